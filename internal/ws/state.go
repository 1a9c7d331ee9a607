package ws

import (
	"encoding/binary"
	"encoding/json"
	"math"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/coreman2200/funtimes-evergreen/internal/camera"
	diag "github.com/coreman2200/funtimes-evergreen/internal/diagnostics"
	"github.com/coreman2200/funtimes-evergreen/internal/experience"
	"github.com/coreman2200/funtimes-evergreen/internal/render"
	"github.com/coreman2200/funtimes-evergreen/internal/scene"
)

// Commander queues work onto the frame loop.
type Commander interface {
	Do(fn func(*experience.Experience)) bool
}

// State is the preview server: it is a render.Driver that broadcasts frames, plus the
// diag, control and health endpoints.
type State struct {
	mu     sync.RWMutex
	MaxFPS int

	cmd Commander
	Reg *render.Registry // layer toggles; nil disables them

	frameID   uint64
	mode      string
	focus     string
	points    int
	cards     int
	startTime time.Time
	lastSent  time.Time

	clients     map[*websocket.Conn]bool
	diagClients map[*websocket.Conn]bool
	writeMu     sync.Mutex

	CurrentDrivers []string
}

func NewState(cmd Commander, maxFPS int) *State {
	return &State{
		MaxFPS:      maxFPS,
		cmd:         cmd,
		startTime:   time.Now(),
		clients:     map[*websocket.Conn]bool{},
		diagClients: map[*websocket.Conn]bool{},
	}
}

type wireCard struct {
	ID          int        `json:"id"`
	Pos         [3]float64 `json:"pos"`
	Rot         [3]float64 `json:"rot"`
	W           float64    `json:"w"`
	H           float64    `json:"h"`
	Ready       bool       `json:"ready"`
	Highlighted bool       `json:"highlighted,omitempty"`
	Message     string     `json:"message,omitempty"`
}

type wireFrame struct {
	T           int64       `json:"t"`
	FrameID     uint64      `json:"frame_id"`
	Mode        string      `json:"mode"`
	Focus       string      `json:"focus"`
	Expand      float64     `json:"expand"`
	Highlighted *int        `json:"highlighted"` // null when nothing is focused
	Camera      camera.View `json:"camera"`
	Pos         []byte      `json:"pos"`  // float32 LE xyz per point
	RGB         []byte      `json:"rgb"`  // 8-bit per channel
	Size        []byte      `json:"size"` // float32 LE per point
	Cards       []wireCard  `json:"cards"`
}

// Write records the frame for /health and broadcasts it, at most MaxFPS times a second.
func (s *State) Write(f *render.Frame) error {
	s.mu.Lock()
	s.frameID, s.mode, s.focus = f.ID, f.Mode, f.Focus
	s.points, s.cards = len(f.Points), len(f.Quads)
	now := time.Now()
	due := s.MaxFPS <= 0 || now.Sub(s.lastSent) >= time.Second/time.Duration(s.MaxFPS)
	idle := len(s.clients) == 0
	if due && !idle {
		s.lastSent = now
	}
	s.mu.Unlock()
	if !due || idle {
		return nil
	}
	b, err := json.Marshal(encodeFrame(f, now))
	if err != nil {
		return err
	}
	s.broadcast(s.clients, b)
	return nil
}

func encodeFrame(f *render.Frame, now time.Time) wireFrame {
	w := wireFrame{
		T:           now.UnixNano(),
		FrameID:     f.ID,
		Mode:        f.Mode,
		Focus:       f.Focus,
		Expand:      f.Expand,
		Camera:      f.View,
		Pos:         make([]byte, len(f.Points)*12),
		RGB:         make([]byte, len(f.Points)*3),
		Size:        make([]byte, len(f.Points)*4),
		Cards:       make([]wireCard, 0, len(f.Quads)),
	}
	if f.HasHighlight {
		id := f.Highlighted
		w.Highlighted = &id
	}
	le := binary.LittleEndian
	for i, p := range f.Points {
		le.PutUint32(w.Pos[i*12:], math.Float32bits(float32(p.Pos.X)))
		le.PutUint32(w.Pos[i*12+4:], math.Float32bits(float32(p.Pos.Y)))
		le.PutUint32(w.Pos[i*12+8:], math.Float32bits(float32(p.Pos.Z)))
		w.RGB[i*3+0] = render.To8(p.Color.R)
		w.RGB[i*3+1] = render.To8(p.Color.G)
		w.RGB[i*3+2] = render.To8(p.Color.B)
		le.PutUint32(w.Size[i*4:], math.Float32bits(p.Size))
	}
	for _, q := range f.Quads {
		w.Cards = append(w.Cards, wireCard{
			ID:          q.ID,
			Pos:         [3]float64{q.Center.X, q.Center.Y, q.Center.Z},
			Rot:         [3]float64{q.Rot.X, q.Rot.Y, q.Rot.Z},
			W:           q.Width,
			H:           q.Height,
			Ready:       q.Image != nil,
			Highlighted: q.Highlighted,
			Message:     q.Message,
		})
	}
	return w
}

func (s *State) HandleFramesWS(w http.ResponseWriter, r *http.Request) {
	s.subscribe(w, r, s.clients)
}

func (s *State) HandleDiagWS(w http.ResponseWriter, r *http.Request) {
	s.subscribe(w, r, s.diagClients)
}

func (s *State) subscribe(w http.ResponseWriter, r *http.Request, set map[*websocket.Conn]bool) {
	up := websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}
	conn, err := up.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	s.mu.Lock()
	set[conn] = true
	s.mu.Unlock()

	go func() {
		defer func() {
			s.mu.Lock()
			delete(set, conn)
			s.mu.Unlock()
			conn.Close()
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

func (s *State) HandleControlWS(w http.ResponseWriter, r *http.Request) {
	up := websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}
	conn, err := up.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var msg map[string]any
		if err := json.Unmarshal(data, &msg); err != nil {
			continue
		}
		ack := s.Control(msg)
		b, _ := json.Marshal(ack)
		conn.SetWriteDeadline(time.Now().Add(200 * time.Millisecond))
		if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
			return
		}
	}
}

func (s *State) HandleHealth(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	resp := map[string]any{
		"frame_id": s.frameID,
		"uptime_s": time.Since(s.startTime).Seconds(),
		"mode":     s.mode,
		"focus":    s.focus,
		"points":   s.points,
		"cards":    s.cards,
		"clients":  len(s.clients),
		"drivers":  s.CurrentDrivers,
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

// Control queues every recognised command and reports which were accepted.
func (s *State) Control(msg map[string]any) map[string]any {
	ack := map[string]any{}
	queue := func(key string, fn func(*experience.Experience)) {
		ok := s.cmd != nil && s.cmd.Do(fn)
		ack[key] = ok
	}

	if v, ok := msg["toggle"].(bool); ok && v {
		queue("toggle", func(e *experience.Experience) { e.Toggle() })
	}
	if v, ok := msg["mode"].(string); ok {
		if m, ok := scene.ParseMode(v); ok {
			queue("mode", func(e *experience.Experience) { e.SetMode(m) })
		} else {
			s.unknown("mode", v)
			ack["mode"] = false
		}
	}
	if v, ok := msg["click"].(float64); ok {
		id := int(v)
		queue("click", func(e *experience.Experience) { e.Click(id) })
	}
	if v, ok := msg["orbit"].(map[string]any); ok {
		yaw, _ := v["yaw"].(float64)
		pitch, _ := v["pitch"].(float64)
		queue("orbit", func(e *experience.Experience) { e.Orbit(yaw, pitch) })
	}
	if v, ok := msg["layer"].(map[string]any); ok {
		name, _ := v["name"].(string)
		on, _ := v["on"].(bool)
		reg := s.Reg
		if reg == nil {
			ack["layer"] = false
		} else {
			queue("layer", func(*experience.Experience) {
				if !reg.SetEnabled(name, on) {
					log.Warn().Str("layer", name).Msg("unknown layer")
				}
			})
		}
	}
	if len(ack) == 0 {
		s.unknown("message", msg)
	}
	return ack
}

func (s *State) unknown(what string, v any) {
	s.Push(diag.Diagnostic{
		Severity: diag.Warn, Code: diag.ControlUnknown, Summary: "Unrecognised control " + what,
		Evidence: map[string]any{what: v},
	})
}

// Push sends a diagnostic to every /diag subscriber.
func (s *State) Push(d diag.Diagnostic) {
	b, err := json.Marshal(d)
	if err != nil {
		return
	}
	s.broadcast(s.diagClients, b)
}

func (s *State) broadcast(set map[*websocket.Conn]bool, b []byte) {
	s.mu.RLock()
	conns := make([]*websocket.Conn, 0, len(set))
	for c := range set {
		conns = append(conns, c)
	}
	s.mu.RUnlock()

	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	for _, c := range conns {
		c.SetWriteDeadline(time.Now().Add(200 * time.Millisecond))
		if err := c.WriteMessage(websocket.TextMessage, b); err != nil {
			log.Debug().Err(err).Msg("ws write")
		}
	}
}
