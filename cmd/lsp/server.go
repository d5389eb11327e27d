package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/kieli-lang/kieli/internal/db"
)

// LanguageServer translates JSON-RPC messages into database
// operations. The loop is single-threaded: one message is read and
// handled to completion before the next.
type LanguageServer struct {
	db     *db.Database
	writer io.Writer
}

func NewLanguageServer(database *db.Database, writer io.Writer) *LanguageServer {
	if writer == nil {
		writer = os.Stdout
	}
	return &LanguageServer{db: database, writer: writer}
}

// Start reads Content-Length framed messages from stdin until EOF.
func (s *LanguageServer) Start() {
	reader := bufio.NewReader(os.Stdin)

	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			if err != io.EOF {
				log.Printf("Error reading header: %v", err)
			}
			break
		}
		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			continue
		}

		if !strings.HasPrefix(line, "Content-Length: ") {
			continue
		}
		contentLength, err := strconv.Atoi(strings.TrimPrefix(line, "Content-Length: "))
		if err != nil {
			log.Printf("Error parsing Content-Length: %v", err)
			continue
		}

		// Skip remaining headers until the empty separator line.
		for {
			headerLine, err := reader.ReadString('\n')
			if err != nil {
				log.Printf("Error reading separator: %v", err)
				return
			}
			if strings.TrimRight(headerLine, "\r\n") == "" {
				break
			}
		}

		content := make([]byte, contentLength)
		if _, err := io.ReadFull(reader, content); err != nil {
			log.Printf("Error reading content: %v", err)
			break
		}

		if err := s.HandleMessage(content); err != nil {
			log.Printf("Error handling message: %v", err)
		}
	}
}

type baseMessage struct {
	Jsonrpc string          `json:"jsonrpc"`
	ID      interface{}     `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// HandleMessage dispatches one raw JSON-RPC message. A message with no
// id is a notification and gets no reply.
func (s *LanguageServer) HandleMessage(content []byte) error {
	var message baseMessage
	if err := json.Unmarshal(content, &message); err != nil {
		return fmt.Errorf("failed to unmarshal message: %v", err)
	}
	if message.ID != nil {
		return s.handleRequest(message)
	}
	return s.handleNotification(message)
}

func (s *LanguageServer) handleRequest(message baseMessage) error {
	switch message.Method {
	case "initialize":
		return s.handleInitialize(message.ID)
	case "shutdown":
		return s.reply(message.ID, nil)

	case "textDocument/hover":
		var params HoverParams
		if err := json.Unmarshal(message.Params, &params); err != nil {
			return s.replyError(message.ID, codeInvalidParams, err.Error())
		}
		return s.handleHover(message.ID, params)

	case "textDocument/definition":
		var params DefinitionParams
		if err := json.Unmarshal(message.Params, &params); err != nil {
			return s.replyError(message.ID, codeInvalidParams, err.Error())
		}
		return s.handleDefinition(message.ID, params)

	case "textDocument/formatting":
		var params DocumentFormattingParams
		if err := json.Unmarshal(message.Params, &params); err != nil {
			return s.replyError(message.ID, codeInvalidParams, err.Error())
		}
		return s.handleFormatting(message.ID, params)

	default:
		return s.replyError(
			message.ID, codeMethodNotFound, "Method not found: "+message.Method)
	}
}

func (s *LanguageServer) handleNotification(message baseMessage) error {
	switch message.Method {
	case "initialized":
		return nil

	case "textDocument/didOpen":
		var params DidOpenTextDocumentParams
		if err := json.Unmarshal(message.Params, &params); err != nil {
			return err
		}
		return s.handleDidOpen(params)

	case "textDocument/didChange":
		var params DidChangeTextDocumentParams
		if err := json.Unmarshal(message.Params, &params); err != nil {
			return err
		}
		return s.handleDidChange(params)

	case "textDocument/didClose":
		var params DidCloseTextDocumentParams
		if err := json.Unmarshal(message.Params, &params); err != nil {
			return err
		}
		return s.handleDidClose(params)

	case "exit":
		os.Exit(0)
		return nil

	default:
		// Unknown notifications (including $/cancelRequest) are
		// ignored; requests always run to completion.
		return nil
	}
}

func (s *LanguageServer) reply(id, result interface{}) error {
	return s.sendMessage(ResponseMessage{Jsonrpc: "2.0", ID: id, Result: result})
}

func (s *LanguageServer) replyError(id interface{}, code int, message string) error {
	return s.sendMessage(ResponseMessage{
		Jsonrpc: "2.0",
		ID:      id,
		Error:   &Error{Code: code, Message: message},
	})
}

func (s *LanguageServer) sendNotification(method string, params interface{}) error {
	return s.sendMessage(NotificationMessage{Jsonrpc: "2.0", Method: method, Params: params})
}

func (s *LanguageServer) sendMessage(message interface{}) error {
	data, err := json.Marshal(message)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(s.writer, "Content-Length: %d\r\n\r\n%s", len(data), data)
	return err
}
