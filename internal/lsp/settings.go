package lsp

import "encoding/json"

func (s *Server) handleDidChangeConfiguration(msg *rpcMessage) error {
	if len(msg.Params) == 0 {
		return nil
	}
	var params didChangeConfigurationParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return nil
	}
	s.applySettings(params.Settings)
	return nil
}

// applySettings reads the "shadertune" section. Unknown or malformed
// settings are ignored.
func (s *Server) applySettings(raw json.RawMessage) {
	if len(raw) == 0 {
		return
	}
	var settings lspSettings
	if err := json.Unmarshal(raw, &settings); err != nil {
		s.log.Debug("ignoring malformed settings", "err", err)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if settings.ShaderTune.Trace != nil {
		s.traceLSP = *settings.ShaderTune.Trace
	}
	if auto := settings.ShaderTune.AutoCompile; auto != nil && *auto != s.autoCompile {
		s.autoCompile = *auto
		for _, doc := range s.docs {
			if doc.coord != nil {
				doc.coord.SetAutoCompile(*auto)
			}
		}
	}
}
