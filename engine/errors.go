package engine

import "fmt"

// ConfigError reports a gap in required configuration: a table key that
// must exist for the requested generation, such as a level with no defined
// budget. It is fatal and never retried internally.
type ConfigError struct {
	Msg string
}

func (e *ConfigError) Error() string {
	return e.Msg
}

func configErrorf(format string, args ...any) *ConfigError {
	return &ConfigError{Msg: fmt.Sprintf(format, args...)}
}

// NoCandidatesError reports that combat generation found no template or
// enemy group matching the request. Fatal for that encounter only; the
// noncombat paths degrade to an empty encounter instead of returning this.
type NoCandidatesError struct {
	Level int
	Biome string
	Slot  string
	Msg   string
}

func (e *NoCandidatesError) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	return fmt.Sprintf("no combat encounter templates match level=%d, biome=%s, slot=%s",
		e.Level, e.Biome, e.Slot)
}
