package lsp

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/xiaoxustudio/webgal-language-tools/internal/logger"
)

// Server represents the LSP server
type Server struct {
	reader      *bufio.Reader
	writer      io.Writer
	writeMutex  sync.Mutex
	handler     Handler
	initialized bool
	shutdown    bool
}

// Handler interface for handling LSP requests
type Handler interface {
	Initialize(params InitializeParams) (*InitializeResult, error)
	TextDocumentDidOpen(params DidOpenTextDocumentParams) error
	TextDocumentDidChange(params DidChangeTextDocumentParams) error
	TextDocumentDidClose(params DidCloseTextDocumentParams) error
	TextDocumentCompletion(params CompletionParams) (*CompletionList, error)
	TextDocumentHover(params HoverParams) (*Hover, error)
	TextDocumentDefinition(params DefinitionParams) ([]LocationLink, error)
	TextDocumentReferences(params ReferenceParams) ([]Location, error)
	TextDocumentDocumentLink(params DocumentLinkParams) ([]DocumentLink, error)
	TextDocumentFoldingRange(params FoldingRangeParams) ([]FoldingRange, error)
	TextDocumentDocumentSymbol(params DocumentSymbolParams) ([]DocumentSymbol, error)
	TextDocumentSemanticTokensFull(params SemanticTokensParams) (*SemanticTokens, error)
	TextDocumentDiagnostic(params DocumentDiagnosticParams) (*DocumentDiagnosticReport, error)
	WorkspaceDidChangeConfiguration(params DidChangeConfigurationParams) error
}

// NewServer creates a new LSP server
func NewServer(reader io.Reader, writer io.Writer, handler Handler) *Server {
	return &Server{
		reader:  bufio.NewReader(reader),
		writer:  writer,
		handler: handler,
	}
}

// errExit stops the read loop after the exit notification
var errExit = errors.New("exit requested")

// Start starts the server
func (s *Server) Start() error {
	for {
		msg, err := s.readMessage()
		if err != nil {
			if err == io.EOF {
				logger.Info("Client disconnected")
				return nil
			}
			logger.Error("Error reading message: %v", err)
			return err
		}

		if err := s.handleMessage(msg); err != nil {
			if errors.Is(err, errExit) {
				logger.Info("Received exit notification")
				return nil
			}
			logger.Error("Error handling message: %v", err)
		}
	}
}

// readMessage reads a message from the client
func (s *Server) readMessage() ([]byte, error) {
	content, err := ReadMessage(s.reader)
	if err != nil {
		return nil, err
	}

	logger.Debug("Received message: %s", string(content))
	return content, nil
}

// handleMessage handles a message from the client
func (s *Server) handleMessage(msg []byte) error {
	// Parse as generic message to check for ID
	var genericMsg map[string]json.RawMessage
	if err := json.Unmarshal(msg, &genericMsg); err != nil {
		if sendErr := s.sendErrorResponse(nil, ParseError, "Parse error"); sendErr != nil {
			return sendErr
		}
		return fmt.Errorf("invalid JSON: %w", err)
	}

	// Responses to server-initiated requests carry an id but no method
	_, hasMethod := genericMsg["method"]
	if _, hasID := genericMsg["id"]; hasID {
		if !hasMethod {
			logger.Debug("Ignoring client response: %s", string(msg))
			return nil
		}
		var req Request
		if err := json.Unmarshal(msg, &req); err != nil {
			return fmt.Errorf("invalid request: %w", err)
		}
		return s.handleRequest(&req)
	}

	var notif Notification
	if err := json.Unmarshal(msg, &notif); err != nil {
		return fmt.Errorf("invalid notification: %w", err)
	}
	return s.handleNotification(&notif)
}

// call decodes params, runs fn and sends its result or error back to the client
func call[P any, R any](s *Server, req *Request, fn func(P) (R, error)) error {
	var params P
	if len(req.Params) > 0 {
		if err := json.Unmarshal(req.Params, &params); err != nil {
			return s.sendErrorResponse(req.ID, InvalidParams, "Invalid params")
		}
	}

	result, err := fn(params)
	if err != nil {
		return s.sendErrorResponse(req.ID, InternalError, err.Error())
	}

	return s.sendResponse(req.ID, result)
}

// handleRequest handles a request from the client
func (s *Server) handleRequest(req *Request) error {
	logger.Debug("Handling request: method=%s, id=%v", req.Method, req.ID)

	if !s.initialized && req.Method != "initialize" {
		return s.sendErrorResponse(req.ID, ServerNotInitialized, "Server not initialized")
	}
	if s.shutdown {
		return s.sendErrorResponse(req.ID, InvalidRequest, "Server is shutting down")
	}

	switch req.Method {
	case "initialize":
		logger.Debug("Initialize params raw: %s", string(req.Params))
		err := call(s, req, s.handler.Initialize)
		s.initialized = true
		return err

	case "textDocument/completion":
		return call(s, req, s.handler.TextDocumentCompletion)

	case "textDocument/hover":
		return call(s, req, s.handler.TextDocumentHover)

	case "textDocument/definition":
		return call(s, req, s.handler.TextDocumentDefinition)

	case "textDocument/references":
		return call(s, req, s.handler.TextDocumentReferences)

	case "textDocument/documentLink":
		return call(s, req, s.handler.TextDocumentDocumentLink)

	case "textDocument/foldingRange":
		return call(s, req, s.handler.TextDocumentFoldingRange)

	case "textDocument/documentSymbol":
		return call(s, req, s.handler.TextDocumentDocumentSymbol)

	case "textDocument/semanticTokens/full":
		return call(s, req, s.handler.TextDocumentSemanticTokensFull)

	case "textDocument/diagnostic":
		return call(s, req, s.handler.TextDocumentDiagnostic)

	case "shutdown":
		s.shutdown = true
		return s.sendResponse(req.ID, nil)

	// Optional capabilities - respond with null to indicate not supported
	case "textDocument/formatting",
		"textDocument/rangeFormatting",
		"textDocument/onTypeFormatting",
		"textDocument/codeAction",
		"textDocument/codeLens",
		"textDocument/rename",
		"textDocument/signatureHelp",
		"textDocument/documentHighlight",
		"documentLink/resolve",
		"workspace/symbol",
		"workspace/executeCommand":
		logger.Debug("Unsupported method: %s", req.Method)
		return s.sendResponse(req.ID, nil)

	default:
		logger.Debug("Unknown method: %s", req.Method)
		return s.sendErrorResponse(req.ID, MethodNotFound, "Method not found")
	}
}

// notify decodes notification params and runs fn
func notify[P any](notif *Notification, fn func(P) error) error {
	var params P
	if len(notif.Params) > 0 {
		if err := json.Unmarshal(notif.Params, &params); err != nil {
			return fmt.Errorf("invalid %s params: %w", notif.Method, err)
		}
	}
	return fn(params)
}

// handleNotification handles a notification from the client
func (s *Server) handleNotification(notif *Notification) error {
	logger.Debug("Handling notification: %s", notif.Method)

	switch notif.Method {
	case "textDocument/didOpen":
		return notify(notif, s.handler.TextDocumentDidOpen)

	case "textDocument/didChange":
		return notify(notif, s.handler.TextDocumentDidChange)

	case "textDocument/didClose":
		return notify(notif, s.handler.TextDocumentDidClose)

	case "workspace/didChangeConfiguration":
		return notify(notif, s.handler.WorkspaceDidChangeConfiguration)

	case "exit":
		return errExit

	case "initialized", "$/cancelRequest", "$/setTrace", "webgal/vfsChanged":
		// Nothing to do
		return nil

	default:
		logger.Debug("Unhandled notification: %s", notif.Method)
		return nil
	}
}

// sendResponse sends a response to the client
func (s *Server) sendResponse(id interface{}, result interface{}) error {
	resp := NewResponse(id, result)
	return s.writeMessage(resp)
}

// sendErrorResponse sends an error response to the client
func (s *Server) sendErrorResponse(id interface{}, code int, message string) error {
	resp := NewErrorResponse(id, code, message)
	return s.writeMessage(resp)
}

// SendNotification sends a notification to the client
func (s *Server) SendNotification(method string, params interface{}) error {
	notif, err := NewNotification(method, params)
	if err != nil {
		return err
	}
	return s.writeMessage(notif)
}

// writeMessage writes a message to the client
func (s *Server) writeMessage(msg interface{}) error {
	data, err := EncodeMessage(msg)
	if err != nil {
		return err
	}

	logger.Debug("Sending message: %s", string(data))

	s.writeMutex.Lock()
	defer s.writeMutex.Unlock()
	_, err = s.writer.Write(data)
	return err
}

// Notification parameter types

type DidOpenTextDocumentParams struct {
	TextDocument TextDocumentItem `json:"textDocument"`
}

type DidChangeTextDocumentParams struct {
	TextDocument   VersionedTextDocumentIdentifier  `json:"textDocument"`
	ContentChanges []TextDocumentContentChangeEvent `json:"contentChanges"`
}

type DidCloseTextDocumentParams struct {
	TextDocument TextDocumentIdentifier `json:"textDocument"`
}

type CompletionParams struct {
	TextDocument TextDocumentIdentifier `json:"textDocument"`
	Position     Position               `json:"position"`
}

type HoverParams struct {
	TextDocument TextDocumentIdentifier `json:"textDocument"`
	Position     Position               `json:"position"`
}
