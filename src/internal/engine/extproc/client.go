package extproc

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os/exec"
	"path/filepath"
	"sync"
	"sync/atomic"

	"typegate/src/internal/common"
	"typegate/src/internal/engine"
)

// Loader starts one engine host process per loaded installation
type Loader struct {
	command string
	args    []string
}

// NewLoader creates a loader that launches the host with command and args.
// The installation directory is appended as the final --engine argument.
func NewLoader(command string, args []string) *Loader {
	return &Loader{command: command, args: args}
}

// Load verifies the installation and starts a host process bound to it
func (l *Loader) Load(installPath string) (engine.Engine, error) {
	if !common.FileExists(filepath.Join(installPath, "package.json")) {
		return nil, fmt.Errorf("no engine installation at %s", installPath)
	}

	args := append(append([]string{}, l.args...), "--engine", installPath)
	host := &Host{
		cmd:         exec.Command(l.command, args...),
		installPath: installPath,
		pending:     make(map[int64]chan *Message),
		providers:   make(map[string]engine.ScopeProvider),
		done:        make(chan struct{}),
	}
	if err := host.start(); err != nil {
		return nil, err
	}
	return host, nil
}

// Host is one running engine host process. It implements engine.Engine; the
// sessions it hands out share its single stdio channel.
type Host struct {
	cmd         *exec.Cmd
	installPath string
	version     string

	stdin   io.WriteCloser
	writeMu sync.Mutex

	pendingMu sync.Mutex
	pending   map[int64]chan *Message
	nextID    atomic.Int64

	providerMu sync.Mutex
	providers  map[string]engine.ScopeProvider
	nextSessID atomic.Int64

	done      chan struct{}
	closeOnce sync.Once
}

func (h *Host) start() error {
	stdin, err := h.cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("failed to open engine stdin: %w", err)
	}
	stdout, err := h.cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("failed to open engine stdout: %w", err)
	}
	stderr, err := h.cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("failed to open engine stderr: %w", err)
	}

	if err := h.cmd.Start(); err != nil {
		return fmt.Errorf("failed to start engine host: %w", err)
	}
	h.stdin = stdin

	go h.readLoop(stdout)
	go h.drainStderr(stderr)

	var info struct {
		Version string `json:"version"`
	}
	if err := h.call(context.Background(), "engine/info", nil, &info); err != nil {
		h.Close()
		return fmt.Errorf("engine handshake failed: %w", err)
	}
	h.version = info.Version

	common.EngineLogger.Info("engine host started for %s (version %s, pid %d)",
		h.installPath, h.version, h.cmd.Process.Pid)
	return nil
}

// Version reports the engine's self-reported version from the handshake
func (h *Host) Version() string { return h.version }

// NewSession registers provider and opens a session in the host process.
// Reverse scope requests for the returned session id are answered from
// provider for as long as the session lives.
func (h *Host) NewSession(provider engine.ScopeProvider) (engine.Session, error) {
	id := fmt.Sprintf("s%d", h.nextSessID.Add(1))

	h.providerMu.Lock()
	h.providers[id] = provider
	h.providerMu.Unlock()

	params := struct {
		Session string                 `json:"session"`
		Options map[string]interface{} `json:"options"`
	}{Session: id, Options: provider.CompilerOptions()}

	if err := h.call(context.Background(), "session/new", params, nil); err != nil {
		h.providerMu.Lock()
		delete(h.providers, id)
		h.providerMu.Unlock()
		return nil, err
	}
	return &hostSession{host: h, id: id}, nil
}

// ParseProjectConfig delegates config normalization to the engine
func (h *Host) ParseProjectConfig(ctx context.Context, configPath string) (*engine.ParsedConfig, error) {
	params := struct {
		Path string `json:"path"`
	}{Path: configPath}

	var parsed engine.ParsedConfig
	if err := h.call(ctx, "config/parse", params, &parsed); err != nil {
		return nil, err
	}
	return &parsed, nil
}

// Close shuts the host process down. Safe to call more than once.
func (h *Host) Close() error {
	var err error
	h.closeOnce.Do(func() {
		close(h.done)
		if h.stdin != nil {
			h.stdin.Close()
		}
		if h.cmd.Process != nil {
			err = h.cmd.Wait()
		}
		common.EngineLogger.Debug("engine host for %s stopped", h.installPath)
	})
	return err
}

// call sends a request and blocks for its response
func (h *Host) call(ctx context.Context, method string, params, result interface{}) error {
	id := h.nextID.Add(1)
	msg, err := newRequest(id, method, params)
	if err != nil {
		return err
	}

	ch := make(chan *Message, 1)
	h.pendingMu.Lock()
	h.pending[id] = ch
	h.pendingMu.Unlock()
	defer func() {
		h.pendingMu.Lock()
		delete(h.pending, id)
		h.pendingMu.Unlock()
	}()

	if err := h.write(msg); err != nil {
		return err
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-h.done:
		return fmt.Errorf("engine host exited during %s", method)
	case response := <-ch:
		if response.Error != nil {
			return response.Error
		}
		if result != nil && len(response.Result) > 0 {
			if err := json.Unmarshal(response.Result, result); err != nil {
				return fmt.Errorf("bad %s response: %w", method, err)
			}
		}
		return nil
	}
}

// notify sends a one-way message
func (h *Host) notify(method string, params interface{}) {
	msg, err := newNotification(method, params)
	if err != nil {
		common.EngineLogger.Error("failed to build %s notification: %v", method, err)
		return
	}
	if err := h.write(msg); err != nil {
		common.EngineLogger.Debug("failed to send %s: %v", method, err)
	}
}

func (h *Host) write(msg *Message) error {
	h.writeMu.Lock()
	defer h.writeMu.Unlock()
	return WriteMessage(h.stdin, msg)
}

// readLoop routes everything the host process says: responses to waiting
// calls, reverse scope requests to the owning provider.
func (h *Host) readLoop(stdout io.Reader) {
	reader := bufio.NewReaderSize(stdout, readBufferSize)

	for {
		msg, err := ReadMessage(reader)
		if err != nil {
			if err != io.EOF {
				common.EngineLogger.Warn("engine host stream broken: %v", err)
			}
			h.Close()
			return
		}

		switch {
		case msg.Method != "" && msg.ID != nil:
			h.handleReverseRequest(msg)
		case msg.Method != "":
			common.EngineLogger.Debug("engine notification %s ignored", msg.Method)
		case msg.ID != nil:
			h.pendingMu.Lock()
			ch, ok := h.pending[*msg.ID]
			h.pendingMu.Unlock()
			if ok {
				ch <- msg
			} else {
				common.EngineLogger.Debug("dropping response for unknown request %d", *msg.ID)
			}
		default:
			common.EngineLogger.Warn("malformed engine message: no id and no method")
		}
	}
}

func (h *Host) drainStderr(stderr io.Reader) {
	scanner := bufio.NewScanner(stderr)
	for scanner.Scan() {
		common.EngineLogger.Debug("engine: %s", scanner.Text())
	}
}

// scopeParams is the parameter shape of every reverse scope request
type scopeParams struct {
	Session string `json:"session"`
	File    string `json:"file"`
}

// handleReverseRequest answers the engine's scope queries from the live
// provider registered for the session. The provider is consulted at answer
// time, which is what makes overlay writes visible without a session rebuild.
func (h *Host) handleReverseRequest(msg *Message) {
	id := *msg.ID

	var params scopeParams
	if len(msg.Params) > 0 {
		if err := json.Unmarshal(msg.Params, &params); err != nil {
			h.respondError(id, InvalidParams, err.Error())
			return
		}
	}

	h.providerMu.Lock()
	provider, ok := h.providers[params.Session]
	h.providerMu.Unlock()
	if !ok {
		h.respondError(id, InvalidRequest, fmt.Sprintf("unknown session %s", params.Session))
		return
	}

	switch msg.Method {
	case "scope/rootFiles":
		h.respond(id, provider.RootFiles())
	case "scope/content":
		content, err := provider.Content(params.File)
		if err != nil {
			h.respondError(id, InternalError, err.Error())
			return
		}
		h.respond(id, content)
	case "scope/version":
		h.respond(id, provider.ContentVersion(params.File))
	case "scope/options":
		h.respond(id, provider.CompilerOptions())
	default:
		h.respondError(id, MethodNotFound, fmt.Sprintf("unknown method %s", msg.Method))
	}
}

func (h *Host) respond(id int64, result interface{}) {
	msg, err := newResponse(id, result)
	if err != nil {
		msg = newErrorResponse(id, InternalError, err.Error())
	}
	if err := h.write(msg); err != nil {
		common.EngineLogger.Debug("failed to answer reverse request %d: %v", id, err)
	}
}

func (h *Host) respondError(id int64, code int, message string) {
	if err := h.write(newErrorResponse(id, code, message)); err != nil {
		common.EngineLogger.Debug("failed to answer reverse request %d: %v", id, err)
	}
}
