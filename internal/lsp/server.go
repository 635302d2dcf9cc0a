package lsp

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"shadertune/internal/compiler"
	"shadertune/internal/complete"
	"shadertune/internal/diag"
	"shadertune/internal/gpu"
	"shadertune/internal/keywords"
	"shadertune/internal/observ"
	"shadertune/internal/version"
)

var (
	// ErrExit signals a graceful shutdown after receiving "exit".
	ErrExit = errors.New("lsp exit")
	// ErrExitWithoutShutdown signals an "exit" without a preceding "shutdown".
	ErrExitWithoutShutdown = errors.New("lsp exit without shutdown")
)

// ServerOptions configures LSP server behavior.
type ServerOptions struct {
	// Backend compiles documents written in its language. Documents in other
	// languages, or every document when Backend is nil, only get completion.
	Backend        gpu.Backend
	Debounce       time.Duration
	Timeout        time.Duration
	AutoCompile    bool
	// Parser defaults to the backend's parser.
	Parser         func(string) diag.List
	MaxDiagnostics int
	Logger         *slog.Logger
}

type document struct {
	uri     string
	lang    keywords.Language
	text    string
	version int
	// coord is nil for documents the backend cannot compile.
	coord *compiler.Coordinator
}

// Server handles stdio JSON-RPC for the shadertune language server.
type Server struct {
	in     *bufio.Reader
	out    *bufio.Writer
	sendMu sync.Mutex
	opts   ServerOptions
	log    *slog.Logger

	engines map[keywords.Language]*complete.Engine

	mu                sync.Mutex
	docs              map[string]*document
	workspaceRoot     string
	shutdownRequested bool
	autoCompile       bool
	traceLSP          bool
	baseCtx           context.Context
	compiles          sync.WaitGroup
}

// NewServer constructs a new LSP server.
func NewServer(in io.Reader, out io.Writer, opts ServerOptions) *Server {
	if opts.Debounce <= 0 {
		opts.Debounce = compiler.DefaultDebounce
	}
	if opts.MaxDiagnostics <= 0 {
		opts.MaxDiagnostics = 100
	}
	logger := opts.Logger
	if logger == nil {
		logger = observ.Logger()
	}
	return &Server{
		in:   bufio.NewReader(in),
		out:  bufio.NewWriter(out),
		opts: opts,
		log:  logger.WithGroup("lsp"),
		engines: map[keywords.Language]*complete.Engine{
			keywords.LangMetal: complete.New(keywords.Metal()),
			keywords.LangWGSL:  complete.New(keywords.WGSL()),
		},
		docs:        make(map[string]*document),
		autoCompile: opts.AutoCompile,
		baseCtx:     context.Background(),
	}
}

// Run serves LSP requests until exit or end of input.
func (s *Server) Run(ctx context.Context) error {
	s.mu.Lock()
	s.baseCtx = ctx
	s.mu.Unlock()
	defer s.closeAll()
	for {
		payload, err := readMessage(s.in)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		var msg rpcMessage
		if err := json.Unmarshal(payload, &msg); err != nil {
			s.log.Warn("failed to parse message", "err", err)
			continue
		}
		if msg.Method == "" {
			continue
		}
		if s.currentTrace() {
			s.log.Info("recv", "method", msg.Method)
		}
		if err := s.handleMessage(&msg); err != nil {
			return err
		}
	}
}

func (s *Server) handleMessage(msg *rpcMessage) error {
	switch msg.Method {
	case "initialize":
		return s.handleInitialize(msg)
	case "initialized":
		return nil
	case "shutdown":
		return s.handleShutdown(msg)
	case "exit":
		if s.isShutdown() {
			return ErrExit
		}
		return ErrExitWithoutShutdown
	case "workspace/didChangeConfiguration":
		return s.handleDidChangeConfiguration(msg)
	case "textDocument/didOpen":
		return s.handleDidOpen(msg)
	case "textDocument/didChange":
		return s.handleDidChange(msg)
	case "textDocument/didSave":
		return s.handleDidSave(msg)
	case "textDocument/didClose":
		return s.handleDidClose(msg)
	case "textDocument/completion":
		return s.handleCompletion(msg)
	default:
		if len(msg.ID) > 0 {
			return s.sendError(msg.ID, -32601, "method not found")
		}
		return nil
	}
}

func (s *Server) handleInitialize(msg *rpcMessage) error {
	var params initializeParams
	if len(msg.Params) > 0 {
		if err := json.Unmarshal(msg.Params, &params); err != nil {
			return s.sendError(msg.ID, -32602, "invalid params")
		}
	}
	root := ""
	if params.RootURI != "" {
		root = uriToPath(params.RootURI)
	}
	if root == "" && params.RootPath != "" {
		root = params.RootPath
	}
	if root == "" && len(params.WorkspaceFolders) > 0 {
		root = uriToPath(params.WorkspaceFolders[0].URI)
	}
	if root != "" {
		if abs, err := filepath.Abs(root); err == nil {
			root = abs
		}
	}
	s.mu.Lock()
	s.workspaceRoot = root
	s.mu.Unlock()
	s.applySettings(params.InitializationOptions)
	s.log.Debug("initialize", "root", root)

	result := initializeResult{
		Capabilities: serverCapabilities{
			TextDocumentSync: textDocumentSyncOptions{
				OpenClose: true,
				Change:    2,
				Save:      saveOptions{IncludeText: true},
			},
			CompletionProvider: &completionOptions{},
		},
		ServerInfo: serverInfo{Name: "shadertune", Version: version.Version},
	}
	return s.sendResponse(msg.ID, result)
}

func (s *Server) handleShutdown(msg *rpcMessage) error {
	s.mu.Lock()
	s.shutdownRequested = true
	s.mu.Unlock()
	s.closeAll()
	return s.sendResponse(msg.ID, nil)
}

// closeAll stops every coordinator and waits for running compiles.
func (s *Server) closeAll() {
	s.mu.Lock()
	for _, doc := range s.docs {
		if doc.coord != nil {
			doc.coord.Close()
		}
	}
	s.mu.Unlock()
	s.compiles.Wait()
}

func (s *Server) handleDidOpen(msg *rpcMessage) error {
	var params didOpenTextDocumentParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return err
	}
	uri := canonicalURI(params.TextDocument.URI)
	if uri == "" {
		return nil
	}
	lang, ok := languageOf(uri, params.TextDocument.LanguageID)
	if !ok {
		s.log.Debug("ignoring non-shader document", "uri", uri)
		return nil
	}
	doc := &document{
		uri:     uri,
		lang:    lang,
		text:    params.TextDocument.Text,
		version: params.TextDocument.Version,
	}
	s.mu.Lock()
	if old := s.docs[uri]; old != nil && old.coord != nil {
		old.coord.Close()
	}
	if s.opts.Backend != nil && s.opts.Backend.Language() == lang {
		doc.coord = s.newCoordinator(uri)
	}
	s.docs[uri] = doc
	auto := s.autoCompile
	s.mu.Unlock()
	if doc.coord != nil && auto {
		s.compileNow(doc.coord, doc.text)
	}
	return nil
}

func (s *Server) newCoordinator(uri string) *compiler.Coordinator {
	var coord *compiler.Coordinator
	coord = compiler.New(s.opts.Backend, compiler.Options{
		Debounce:    s.opts.Debounce,
		AutoCompile: s.autoCompile,
		Timeout:     s.opts.Timeout,
		Parser:      s.opts.Parser,
		Publish:     func(st compiler.State) { s.publishState(uri, coord, st) },
		Logger:      s.log.With("uri", uri),
	})
	return coord
}

func (s *Server) compileNow(coord *compiler.Coordinator, text string) {
	s.mu.Lock()
	ctx := s.baseCtx
	s.mu.Unlock()
	s.compiles.Add(1)
	go func() {
		defer s.compiles.Done()
		coord.CompileNow(ctx, text)
	}()
}

func (s *Server) handleDidChange(msg *rpcMessage) error {
	var params didChangeTextDocumentParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return err
	}
	uri := canonicalURI(params.TextDocument.URI)
	s.mu.Lock()
	doc := s.docs[uri]
	if doc == nil {
		s.mu.Unlock()
		return nil
	}
	doc.text = applyChanges(doc.text, params.ContentChanges)
	doc.version = params.TextDocument.Version
	text, coord := doc.text, doc.coord
	s.mu.Unlock()
	if coord != nil {
		coord.OnEdit(text)
	}
	return nil
}

func (s *Server) handleDidSave(msg *rpcMessage) error {
	var params didSaveTextDocumentParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return err
	}
	uri := canonicalURI(params.TextDocument.URI)
	s.mu.Lock()
	doc := s.docs[uri]
	if doc == nil {
		s.mu.Unlock()
		return nil
	}
	if params.Text != nil {
		doc.text = *params.Text
	}
	text, coord := doc.text, doc.coord
	s.mu.Unlock()
	if coord != nil {
		s.compileNow(coord, text)
	}
	return nil
}

func (s *Server) handleDidClose(msg *rpcMessage) error {
	var params didCloseTextDocumentParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return err
	}
	uri := canonicalURI(params.TextDocument.URI)
	s.mu.Lock()
	doc := s.docs[uri]
	delete(s.docs, uri)
	s.mu.Unlock()
	if doc == nil || doc.coord == nil {
		return nil
	}
	doc.coord.Close()
	return s.sendPublish(uri, nil)
}

func (s *Server) isShutdown() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.shutdownRequested
}

func (s *Server) currentTrace() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.traceLSP
}

func (s *Server) sendResponse(id json.RawMessage, result any) error {
	msg := map[string]any{
		"jsonrpc": "2.0",
		"id":      id,
		"result":  result,
	}
	return s.send(msg)
}

func (s *Server) sendError(id json.RawMessage, code int, message string) error {
	msg := map[string]any{
		"jsonrpc": "2.0",
		"id":      id,
		"error": rpcError{
			Code:    code,
			Message: message,
		},
	}
	return s.send(msg)
}

func (s *Server) sendPublish(uri string, list []lspDiagnostic) error {
	if list == nil {
		list = []lspDiagnostic{}
	}
	msg := map[string]any{
		"jsonrpc": "2.0",
		"method":  "textDocument/publishDiagnostics",
		"params": publishDiagnosticsParams{
			URI:         uri,
			Diagnostics: list,
		},
	}
	return s.send(msg)
}

func (s *Server) send(msg any) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	s.sendMu.Lock()
	defer s.sendMu.Unlock()
	if err := writeMessage(s.out, payload); err != nil {
		return err
	}
	return s.out.Flush()
}
