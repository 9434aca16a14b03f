// Package ws serves the slider-driven what-if simulator over WebSocket.
package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/alanyoungcy/pedsim/internal/domain"
	"github.com/alanyoungcy/pedsim/internal/server/handler"
)

const (
	// writeWait is the maximum time to wait for a write to complete.
	writeWait = 10 * time.Second

	// pongWait is the maximum time to wait for a pong from the client.
	pongWait = 60 * time.Second

	// pingPeriod sends pings at this interval. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// maxMessageSize is the maximum size of an incoming message.
	maxMessageSize = 4096

	// sendBufferSize is the channel buffer for outgoing messages per session.
	sendBufferSize = 16
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Origin checks happen in the CORS middleware.
		return true
	},
}

// Analyzer is the subset of service.ElasticityService the simulator needs.
type Analyzer interface {
	LoadDataset(ctx context.Context, ref domain.DatasetRef) ([]domain.Observation, error)
	Fit(ctx context.Context, obs []domain.Observation) (domain.FittedModel, string, error)
	AnalyzeFitted(obs []domain.Observation, m domain.FittedModel, fingerprint string, params domain.AnalyzeParams) domain.Analysis
	CurveFor(obs []domain.Observation, a domain.Analysis) (domain.Curve, error)
}

// Envelope types sent to the client.
const (
	TypeAnalysis = "analysis"
	TypeError    = "error"
)

// envelope is the JSON frame written to the client.
type envelope struct {
	Type  string  `json:"type"`
	Data  *result `json:"data,omitempty"`
	Error string  `json:"error,omitempty"`
}

type result struct {
	Analysis domain.Analysis `json:"analysis"`
	Curve    domain.Curve    `json:"curve"`
	// CurveNote explains an empty curve when the chart could not be drawn.
	CurveNote string `json:"curve_note,omitempty"`
}

// frame is one slider update from the client.
type frame struct {
	PctChange *int     `json:"pct_change"`
	UnitCost  *float64 `json:"unit_cost"`
}

// Simulator fits a dataset once per connection and recomputes the scenario
// for every slider update the client sends.
type Simulator struct {
	svc      Analyzer
	pct      domain.PctRange
	logger   *slog.Logger
	mu       sync.Mutex
	sessions map[*session]struct{}
}

// NewSimulator creates a Simulator. pct bounds the accepted price change.
func NewSimulator(svc Analyzer, pct domain.PctRange, logger *slog.Logger) *Simulator {
	return &Simulator{
		svc:      svc,
		pct:      pct,
		logger:   logger,
		sessions: make(map[*session]struct{}),
	}
}

// session is one connected client and the model fitted for it.
type session struct {
	sim   *Simulator
	conn  *websocket.Conn
	send  chan []byte
	obs   []domain.Observation
	model domain.FittedModel
	fp    string
	once  sync.Once
}

// Run blocks until ctx is cancelled, then closes every open session.
func (s *Simulator) Run(ctx context.Context) error {
	<-ctx.Done()
	s.mu.Lock()
	for sess := range s.sessions {
		sess.conn.Close()
	}
	s.mu.Unlock()
	return ctx.Err()
}

// HandleWS loads and fits the dataset named by the query, then upgrades the
// connection. Load or fit failures are answered as plain HTTP errors.
// GET /ws/simulate?source=&id=&key=&sku=
func (s *Simulator) HandleWS(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	ref := domain.DatasetRef{
		Source: domain.DatasetSource(q.Get("source")),
		ID:     q.Get("id"),
		Key:    q.Get("key"),
		SKU:    q.Get("sku"),
	}

	obs, err := s.svc.LoadDataset(r.Context(), ref)
	if err != nil {
		s.httpError(w, r, "load dataset", err)
		return
	}
	m, fp, err := s.svc.Fit(r.Context(), obs)
	if err != nil {
		s.httpError(w, r, "fit dataset", err)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("ws: upgrade failed", slog.String("error", err.Error()))
		return
	}

	sess := &session{
		sim:   s,
		conn:  conn,
		send:  make(chan []byte, sendBufferSize),
		obs:   obs,
		model: m,
		fp:    fp,
	}
	s.register(sess)

	def := s.pct.Default
	sess.handle(frame{PctChange: &def})

	go sess.writePump()
	go sess.readPump()
}

// Sessions returns the number of connected clients.
func (s *Simulator) Sessions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *Simulator) register(sess *session) {
	s.mu.Lock()
	s.sessions[sess] = struct{}{}
	n := len(s.sessions)
	s.mu.Unlock()
	s.logger.Info("ws: session opened",
		slog.String("fingerprint", sess.fp),
		slog.Int("sessions", n),
	)
}

func (s *Simulator) unregister(sess *session) {
	s.mu.Lock()
	delete(s.sessions, sess)
	n := len(s.sessions)
	s.mu.Unlock()
	s.logger.Info("ws: session closed", slog.Int("sessions", n))
}

func (s *Simulator) httpError(w http.ResponseWriter, r *http.Request, op string, err error) {
	status := handler.StatusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		s.logger.ErrorContext(r.Context(), "ws: "+op+" failed", slog.String("error", msg))
		msg = "failed to " + op
	}
	data, _ := json.Marshal(map[string]string{"error": msg})
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	w.Write(data)
}

// handle recomputes the analysis for one frame and queues the reply.
func (c *session) handle(f frame) {
	pct := c.sim.pct.Default
	if f.PctChange != nil {
		pct = *f.PctChange
	}
	if !c.sim.pct.Contains(pct) {
		c.reply(envelope{Type: TypeError, Error: fmt.Sprintf("pct_change %d outside [%d, %d]", pct, c.sim.pct.Min, c.sim.pct.Max)})
		return
	}

	a := c.sim.svc.AnalyzeFitted(c.obs, c.model, c.fp, domain.AnalyzeParams{
		PctChange: float64(pct),
		UnitCost:  f.UnitCost,
	})
	res := &result{Analysis: a}
	curve, err := c.sim.svc.CurveFor(c.obs, a)
	if err != nil {
		res.Curve = domain.Curve{Observed: c.obs}
		res.CurveNote = err.Error()
	} else {
		res.Curve = curve
	}
	c.reply(envelope{Type: TypeAnalysis, Data: res})
}

func (c *session) reply(env envelope) {
	msg, err := json.Marshal(env)
	if err != nil {
		c.sim.logger.Error("ws: marshal reply failed", slog.String("error", err.Error()))
		msg, _ = json.Marshal(envelope{Type: TypeError, Error: "failed to encode analysis"})
	}
	select {
	case c.send <- msg:
	default:
		c.sim.logger.Warn("ws: dropping reply for slow client")
	}
}

func (c *session) close() {
	c.once.Do(func() {
		c.sim.unregister(c)
		close(c.send)
		c.conn.Close()
	})
}

// readPump reads slider frames until the client goes away.
func (c *session) readPump() {
	defer c.close()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.sim.logger.Warn("ws: unexpected close error",
					slog.String("error", err.Error()),
				)
			}
			return
		}

		var f frame
		if err := json.Unmarshal(message, &f); err != nil {
			c.reply(envelope{Type: TypeError, Error: "invalid frame: " + err.Error()})
			continue
		}
		c.handle(f)
	}
}

// writePump writes queued replies and keeps the connection alive with pings.
func (c *session) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
