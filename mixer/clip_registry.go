package mixer

import "log"

// clipEntry is the cached per-clip runtime state keyed by animation name.
// The backend clip node handle is owned exclusively by its entry: it is
// destroyed when the entry is removed, and replacing an entry recreates the
// handle and invalidates the old one.
type clipEntry struct {
	name     string
	source   ClipSource
	clip     ClipHandle
	duration float32
	looping  bool
}

func (m *mixer) AddAnimation(name string, source ClipSource) {
	if name == "" {
		log.Printf("[Mixer] AddAnimation: empty animation name")
		return
	}
	if source == nil {
		log.Printf("[Mixer] AddAnimation: nil clip source for %q", name)
		return
	}
	if !m.initialized {
		log.Printf("[Mixer] AddAnimation %q: graph backend not initialized", name)
		return
	}

	// Re-adding a name replaces the entry: stop it if active and destroy the
	// old backend handle before creating the new one.
	if _, exists := m.entries[name]; exists {
		m.RemoveAnimation(name)
	}

	clip := m.backend.CreateClipNode(m.graph, source)
	if clip == NoHandle {
		log.Printf("[Mixer] AddAnimation: backend rejected clip source for %q", name)
		return
	}

	m.entries[name] = &clipEntry{
		name:     name,
		source:   source,
		clip:     clip,
		duration: source.Duration(),
		looping:  source.Looping(),
	}
}

func (m *mixer) RemoveAnimation(name string) {
	entry, exists := m.entries[name]
	if !exists {
		return
	}
	if st, ok := m.states[name]; ok && st.playing {
		m.stopState(st, true)
	}
	m.backend.DestroyClipNode(entry.clip)
	delete(m.entries, name)
	delete(m.states, name)
}

func (m *mixer) HasAnimation(name string) bool {
	_, exists := m.entries[name]
	return exists
}

func (m *mixer) AnimationNames() []string {
	names := make([]string, 0, len(m.entries))
	for name := range m.entries {
		names = append(names, name)
	}
	return names
}

func (m *mixer) AnimationLength(name string) float32 {
	if entry, exists := m.entries[name]; exists {
		return entry.duration
	}
	return 0
}

// lookup resolves a registered entry for a playback-path operation, logging a
// warning (and returning nil) for unknown names or an uninitialized graph.
func (m *mixer) lookup(name, op string) *clipEntry {
	if !m.initialized {
		log.Printf("[Mixer] %s %q: graph backend not initialized", op, name)
		return nil
	}
	entry, exists := m.entries[name]
	if !exists {
		log.Printf("[Mixer] %s: unknown animation %q", op, name)
		return nil
	}
	return entry
}
