package lsp

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"shadertune/internal/keywords"
)

const (
	completionItemKindFunction = 3
	completionItemKindVariable = 6
	completionItemKindClass    = 7
	completionItemKindProperty = 10
	completionItemKindKeyword  = 14

	insertTextFormatPlainText = 1
	insertTextFormatSnippet   = 2
)

func (s *Server) handleCompletion(msg *rpcMessage) error {
	var params completionParams
	if len(msg.Params) > 0 {
		if err := json.Unmarshal(msg.Params, &params); err != nil {
			return s.sendError(msg.ID, -32602, "invalid params")
		}
	}
	uri := canonicalURI(params.TextDocument.URI)
	s.mu.Lock()
	doc := s.docs[uri]
	var text string
	var lang keywords.Language
	if doc != nil {
		text, lang = doc.text, doc.lang
	}
	s.mu.Unlock()
	if doc == nil {
		return s.sendResponse(msg.ID, completionList{Items: []completionItem{}})
	}
	return s.sendResponse(msg.ID, s.buildCompletion(lang, text, params.Position))
}

func (s *Server) buildCompletion(lang keywords.Language, text string, pos position) completionList {
	engine := s.engines[lang]
	offset := offsetForPosition(text, pos)
	matches := engine.Complete(text, offset)
	items := make([]completionItem, 0, len(matches))
	if len(matches) == 0 {
		return completionList{Items: items}
	}
	start, end, ok := engine.WordRange(text, offset)
	if !ok {
		start, end = offset, offset
	}
	rng := lspRange{Start: positionForOffset(text, start), End: positionForOffset(text, end)}
	for i, it := range matches {
		item := completionItem{
			Label:            it.Text,
			Kind:             completionKind(it.Kind),
			Detail:           it.Kind.DisplayName(),
			SortText:         fmt.Sprintf("%04d", i),
			InsertTextFormat: insertTextFormatPlainText,
			TextEdit:         &textEdit{Range: rng, NewText: it.Text},
		}
		if it.Description != "" {
			item.Documentation = &markupContent{Kind: "plaintext", Value: it.Description}
		}
		if it.Snippet != "" {
			item.InsertTextFormat = insertTextFormatSnippet
			item.TextEdit.NewText = lspSnippet(it.Snippet)
		}
		items = append(items, item)
	}
	return completionList{Items: items}
}

func completionKind(k keywords.Kind) int {
	switch k {
	case keywords.KindType:
		return completionItemKindClass
	case keywords.KindFunction:
		return completionItemKindFunction
	case keywords.KindAttribute:
		return completionItemKindProperty
	case keywords.KindVariable:
		return completionItemKindVariable
	default:
		return completionItemKindKeyword
	}
}

// lspSnippet shifts placeholders $0..$n to $1..$n+1 so tab order follows the
// arguments, and puts the final cursor ($0) after the snippet.
func lspSnippet(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] != '$' {
			b.WriteByte(s[i])
			continue
		}
		j := i + 1
		for j < len(s) && s[j] >= '0' && s[j] <= '9' {
			j++
		}
		if j == i+1 {
			b.WriteByte('$')
			continue
		}
		n, _ := strconv.Atoi(s[i+1 : j])
		b.WriteString("${" + strconv.Itoa(n+1) + "}")
		i = j - 1
	}
	b.WriteString("$0")
	return b.String()
}
