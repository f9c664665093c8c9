// brandhue game sessions
//
// Each game ID owns one quiz session. The first connection to a game becomes
// the host and drives play; anyone else opening the same URL watches the same
// rounds and results as they happen.
//
// Features:
// - WebSockets per game ID: /path/:gameid and /path/:gameid/ws
// - Host identified by cookie (playerID), so a reload keeps control
// - Rounds are sent without their answer; the answer is revealed in the result
// - Errors (stale rounds, double answers, non-host commands) go only to the
//   offending client
// - Games auto-reaped after configurable idle timeout
// - Random 8-char game IDs via crypto/rand, with server-side collision check
// - In-browser QR button to share the current session, backed by go-qrcode

package main

import (
	"crypto/rand"
	"encoding/binary"
	"encoding/hex"
	"errors"
	mrand "math/rand/v2"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/Seednode/brandhue/quiz"
	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
	"github.com/rs/zerolog"
	"github.com/skip2/go-qrcode"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 16 * 1024
)

// Messages coming from clients
type ClientMessage struct {
	Type    string      `json:"type"`               // "start", "next", "reset", "answer"
	RoundID string      `json:"round_id,omitempty"` // answer
	Answer  quiz.Answer `json:"answer"`             // answer
}

// SimpleMessage is for errors and other one-line notices.
type SimpleMessage struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// SessionInfoMessage is sent immediately on connect so the client knows
// what role this cookie has and what the game looks like.
type SessionInfoMessage struct {
	Type      string       `json:"type"` // "session_info"
	GameID    string       `json:"game_id"`
	IsHost    bool         `json:"is_host"`
	Started   bool         `json:"started"`
	CreatedAt time.Time    `json:"created_at"`
	Levels    []quiz.Level `json:"levels,omitempty"`
}

type LevelIntroMessage struct {
	Type  string     `json:"type"` // "level_intro"
	Level quiz.Level `json:"level"`
	Score int        `json:"score"`
}

type OptionView struct {
	Colors  []quiz.Color `json:"colors,omitempty"`
	BrandID string       `json:"brand_id,omitempty"`
	Name    string       `json:"name,omitempty"`
}

type GradientView struct {
	Start     quiz.Color     `json:"start"`
	End       quiz.Color     `json:"end"`
	Variation quiz.Variation `json:"variation"`
}

type SlotView struct {
	BrandID   string      `json:"brand_id"`
	Name      string      `json:"name"`
	TextColor *quiz.Color `json:"text_color,omitempty"`
}

// RoundMessage carries everything needed to render a round and nothing that
// gives away its answer.
type RoundMessage struct {
	Type    string    `json:"type"` // "round"
	RoundID string    `json:"round_id"`
	Mode    quiz.Mode `json:"mode"`
	Level   int       `json:"level"`
	Round   int       `json:"round"`
	Rounds  int       `json:"rounds"`
	Score   int       `json:"score"`

	// multiple-choice and slider
	Brand string `json:"brand,omitempty"`

	// reverse-identify
	Color *quiz.Color `json:"color,omitempty"`

	Options  []OptionView  `json:"options,omitempty"`
	Gradient *GradientView `json:"gradient,omitempty"`

	Family quiz.Family  `json:"family,omitempty"`
	Slots  []SlotView   `json:"slots,omitempty"`
	Pool   []quiz.Color `json:"pool,omitempty"`
}

// ResultMessage reports the score of an answer and reveals the solution.
type ResultMessage struct {
	Type    string           `json:"type"` // "result"
	RoundID string           `json:"round_id"`
	Result  quiz.ScoreResult `json:"result"`
	Score   int              `json:"score"`
	Bonus   int              `json:"bonus"`

	CorrectOption *int                  `json:"correct_option,omitempty"`
	Brand         string                `json:"brand,omitempty"`
	Colors        []quiz.Color          `json:"colors,omitempty"`
	Position      *float64              `json:"position,omitempty"`
	Solution      map[string]quiz.Color `json:"solution,omitempty"`
	Trivia        string                `json:"trivia,omitempty"`
}

type GameOverMessage struct {
	Type    string       `json:"type"` // "game_over"
	Summary quiz.Summary `json:"summary"`
}

type Client struct {
	conn     *websocket.Conn
	send     chan any
	playerID string
}

type hostCommand struct {
	client *Client
	msg    ClientMessage
}

type answerRequest struct {
	client *Client
	msg    ClientMessage
}

type phase int

const (
	phaseLobby phase = iota
	phaseIntro
	phaseRound
	phaseResult
	phaseOver
)

type Hub struct {
	id      string
	clients map[*Client]bool

	register chan *Client
	unreg    chan *Client
	commands chan hostCommand
	answers  chan answerRequest
	done     chan struct{}
	stop     sync.Once

	mu  sync.RWMutex
	log zerolog.Logger

	createdAt    time.Time
	lastActive   time.Time
	hostPlayerID string // cookie/playerID of the host

	catalog   *quiz.Catalog
	rules     quiz.Rules
	newSource func() quiz.Source

	session    *quiz.Session
	phase      phase
	lastResult *ResultMessage
}

func newHub(cfg *Config, gameID string, catalog *quiz.Catalog, rules quiz.Rules, newSource func() quiz.Source) *Hub {
	now := time.Now()
	return &Hub{
		id:         gameID,
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unreg:      make(chan *Client),
		commands:   make(chan hostCommand),
		answers:    make(chan answerRequest),
		done:       make(chan struct{}),
		log:        gameLogger(cfg, gameID),
		createdAt:  now,
		lastActive: now,
		catalog:    catalog,
		rules:      rules,
		newSource:  newSource,
	}
}

func (h *Hub) run() {
	for {
		select {
		case c := <-h.register:
			h.handleRegister(c)

		case c := <-h.unreg:
			h.handleUnregister(c)

		case cmd := <-h.commands:
			h.handleCommand(cmd)

		case ar := <-h.answers:
			h.handleAnswer(ar)

		case <-h.done:
			return
		}
	}
}

func (h *Hub) handleRegister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.lastActive = time.Now()

	// First connection becomes host
	if h.hostPlayerID == "" {
		h.hostPlayerID = c.playerID
		h.log.Info().Str("player", c.playerID).Msg("GAMES: Host connected")
	}

	h.clients[c] = true

	info := SessionInfoMessage{
		Type:      "session_info",
		GameID:    h.id,
		IsHost:    c.playerID == h.hostPlayerID,
		Started:   h.session != nil,
		CreatedAt: h.createdAt,
	}
	if h.session != nil {
		info.Levels = h.session.Levels()
	}
	h.sendLocked(c, info)

	h.sendStateLocked(c)
}

func (h *Hub) handleUnregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.lastActive = time.Now()

	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
}

// handleCommand processes host commands: start, next and reset.
func (h *Hub) handleCommand(cmd hostCommand) {
	c := cmd.client

	h.mu.Lock()
	defer h.mu.Unlock()

	h.lastActive = time.Now()

	if !h.isHostLocked(c) {
		h.sendErrorLocked(c, "Only the host can control this game.")

		return
	}

	switch cmd.msg.Type {
	case "start":
		if h.phase != phaseLobby && h.phase != phaseOver {
			h.sendErrorLocked(c, "A game is already in progress.")

			return
		}
		h.startLocked()
	case "reset":
		h.startLocked()
	case "next":
		h.nextLocked(c)
	}
}

// handleAnswer scores the host's answer and broadcasts the result.
func (h *Hub) handleAnswer(ar answerRequest) {
	c := ar.client

	h.mu.Lock()
	defer h.mu.Unlock()

	h.lastActive = time.Now()

	if !h.isHostLocked(c) {
		h.sendErrorLocked(c, "Only the host can answer.")

		return
	}

	if h.session == nil || h.phase != phaseRound {
		h.sendErrorLocked(c, "There is no round to answer.")

		return
	}

	round, err := h.session.Current()
	if err != nil {
		h.sendErrorLocked(c, errorText(err))

		return
	}

	res, err := h.session.Submit(ar.msg.RoundID, ar.msg.Answer)
	if err != nil {
		h.sendErrorLocked(c, errorText(err))

		return
	}

	result := resultView(round, res, h.session.Score(), h.session.BonusScore())

	h.phase = phaseResult
	h.lastResult = &result

	h.log.Info().
		Str("mode", string(round.Mode)).
		Int("points", res.Points).
		Int("score", h.session.Score()).
		Msg("GAMES: Round answered")

	h.broadcastLocked(result)
}

func (h *Hub) isHostLocked(c *Client) bool {
	return h.hostPlayerID != "" && c.playerID == h.hostPlayerID
}

func (h *Hub) startLocked() {
	h.session = quiz.NewSession(quiz.NewGenerator(h.catalog, h.rules, h.newSource()))
	h.lastResult = nil

	h.log.Info().Msg("GAMES: Session started")

	if h.session.Finished() {
		h.finishLocked()

		return
	}

	h.phase = phaseIntro
	h.broadcastLevelIntroLocked()
}

func (h *Hub) nextLocked(c *Client) {
	switch h.phase {
	case phaseLobby:
		h.sendErrorLocked(c, "The game has not started yet.")
	case phaseIntro:
		h.serveRoundLocked(c)
	case phaseRound:
		h.sendErrorLocked(c, errorText(quiz.ErrNotAnswered))
	case phaseResult:
		changed, err := h.session.Advance()
		if err != nil {
			h.sendErrorLocked(c, errorText(err))

			return
		}
		h.lastResult = nil

		switch {
		case h.session.Finished():
			h.finishLocked()
		case changed:
			h.phase = phaseIntro
			h.broadcastLevelIntroLocked()
		default:
			h.serveRoundLocked(c)
		}
	case phaseOver:
		h.sendErrorLocked(c, "The game is over. Start a new one to play again.")
	}
}

func (h *Hub) serveRoundLocked(c *Client) {
	if _, err := h.session.Current(); err != nil {
		h.sendErrorLocked(c, errorText(err))

		return
	}

	h.phase = phaseRound

	msg, _ := h.roundMessageLocked()
	h.broadcastLocked(msg)
}

func (h *Hub) finishLocked() {
	h.phase = phaseOver

	summary := h.session.Summary()

	h.log.Info().
		Int("score", summary.Score).
		Str("rank", summary.Rank).
		Msg("GAMES: Session finished")

	h.broadcastLocked(GameOverMessage{
		Type:    "game_over",
		Summary: summary,
	})
}

func (h *Hub) broadcastLevelIntroLocked() {
	lvl, _, ok := h.session.Level()
	if !ok {
		return
	}

	h.broadcastLocked(LevelIntroMessage{
		Type:  "level_intro",
		Level: lvl,
		Score: h.session.Score(),
	})
}

func (h *Hub) roundMessageLocked() (RoundMessage, bool) {
	lvl, idx, ok := h.session.Level()
	if !ok {
		return RoundMessage{}, false
	}

	round, err := h.session.Current()
	if err != nil {
		return RoundMessage{}, false
	}

	return roundView(round, lvl, idx, h.session.Score()), true
}

// sendStateLocked brings a newly connected client up to date.
func (h *Hub) sendStateLocked(c *Client) {
	switch h.phase {
	case phaseIntro:
		if lvl, _, ok := h.session.Level(); ok {
			h.sendLocked(c, LevelIntroMessage{
				Type:  "level_intro",
				Level: lvl,
				Score: h.session.Score(),
			})
		}
	case phaseRound, phaseResult:
		if msg, ok := h.roundMessageLocked(); ok {
			h.sendLocked(c, msg)
		}
		if h.phase == phaseResult && h.lastResult != nil {
			h.sendLocked(c, *h.lastResult)
		}
	case phaseOver:
		h.sendLocked(c, GameOverMessage{
			Type:    "game_over",
			Summary: h.session.Summary(),
		})
	}
}

func (h *Hub) sendErrorLocked(c *Client, text string) {
	h.sendLocked(c, SimpleMessage{
		Type:    "error",
		Message: text,
	})
}

func (h *Hub) sendLocked(c *Client, msg any) {
	if _, ok := h.clients[c]; !ok {
		return
	}

	select {
	case c.send <- msg:
	default:
		delete(h.clients, c)
		close(c.send)
	}
}

func (h *Hub) broadcastLocked(msg any) {
	for client := range h.clients {
		select {
		case client.send <- msg:
		default:
			delete(h.clients, client)
			close(client.send)
		}
	}
}

// closeAll disconnects all clients of this hub and stops its event loop
// (used by reaper).
func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for c := range h.clients {
		close(c.send)
		if c.conn != nil {
			_ = c.conn.Close()
		}
		delete(h.clients, c)
	}

	h.stop.Do(func() { close(h.done) })
}

func errorText(err error) string {
	switch {
	case errors.Is(err, quiz.ErrStaleRound):
		return "That round is no longer active."
	case errors.Is(err, quiz.ErrAlreadyAnswered):
		return "That round has already been answered."
	case errors.Is(err, quiz.ErrNotAnswered):
		return "Answer the current round first."
	case errors.Is(err, quiz.ErrSessionOver):
		return "The game is over."
	default:
		return err.Error()
	}
}

func roundView(r quiz.Round, lvl quiz.Level, idx, score int) RoundMessage {
	msg := RoundMessage{
		Type:    "round",
		RoundID: r.ID,
		Mode:    r.Mode,
		Level:   lvl.Number,
		Round:   idx + 1,
		Rounds:  lvl.Rounds,
		Score:   score,
	}

	switch r.Mode {
	case quiz.ModeMultipleChoice:
		msg.Brand = r.Target.Name
		for _, o := range r.Options {
			msg.Options = append(msg.Options, OptionView{Colors: o.Colors})
		}
	case quiz.ModeReverse:
		color := r.Target.Primary
		msg.Color = &color
		for _, o := range r.Options {
			msg.Options = append(msg.Options, OptionView{BrandID: o.BrandID, Name: o.Name})
		}
	case quiz.ModeSlider:
		msg.Brand = r.Target.Name
		msg.Gradient = &GradientView{
			Start:     r.Gradient.Start,
			End:       r.Gradient.End,
			Variation: r.Variation,
		}
	case quiz.ModeMatchingSet:
		msg.Family = r.Family
		msg.Pool = r.Pool
		for _, b := range r.Slots {
			msg.Slots = append(msg.Slots, SlotView{BrandID: b.ID, Name: b.Name, TextColor: b.TextColor})
		}
	}

	return msg
}

func resultView(r quiz.Round, res quiz.ScoreResult, score, bonus int) ResultMessage {
	msg := ResultMessage{
		Type:    "result",
		RoundID: r.ID,
		Result:  res,
		Score:   score,
		Bonus:   bonus,
	}

	switch r.Mode {
	case quiz.ModeMultipleChoice, quiz.ModeReverse:
		if i := r.CorrectOption(); i >= 0 {
			msg.CorrectOption = &i
			msg.Colors = r.Options[i].Colors
		}
		msg.Brand = r.Target.Name
		msg.Trivia = r.Target.Trivia
		if r.Mode == quiz.ModeReverse {
			msg.Colors = []quiz.Color{r.Target.Primary}
		}
	case quiz.ModeSlider:
		pos := r.Gradient.TargetPosition * 100
		msg.Position = &pos
		msg.Colors = []quiz.Color{r.Gradient.Target}
		msg.Brand = r.Target.Name
		msg.Trivia = r.Target.Trivia
	case quiz.ModeMatchingSet:
		msg.Solution = make(map[string]quiz.Color, len(r.Slots))
		for _, b := range r.Slots {
			msg.Solution[b.ID] = b.Primary
		}
	}

	return msg
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

const playerCookieName = "brandhue_id"

func getOrSetPlayerID(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(playerCookieName); err == nil && c.Value != "" {
		return c.Value
	}

	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		logger.Error().Err(err).Msg("ERROR: Unable to generate player id")

		return ""
	}
	id := hex.EncodeToString(buf)

	http.SetCookie(w, &http.Cookie{
		Name:     playerCookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	return id
}

// sourceFactory returns the randomness for each new session. A non-zero seed
// makes every session replay the same rounds.
func sourceFactory(seed uint64) func() quiz.Source {
	return func() quiz.Source {
		if seed != 0 {
			return mrand.New(mrand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
		}

		var key [32]byte
		if _, err := rand.Read(key[:]); err != nil {
			panic("crypto/rand failure: " + err.Error())
		}

		return mrand.New(mrand.NewChaCha8(key))
	}
}

// GameManager holds a set of hubs keyed by game ID, so each $path/$gameid
// is its own isolated session.
type GameManager struct {
	mu          sync.Mutex
	hubs        map[string]*Hub
	idleTimeout time.Duration

	catalog   *quiz.Catalog
	rules     quiz.Rules
	newSource func() quiz.Source
}

func newGameManager(cfg *Config, catalog *quiz.Catalog, rules quiz.Rules) *GameManager {
	gm := &GameManager{
		hubs:        make(map[string]*Hub),
		idleTimeout: cfg.sessionTimeout,
		catalog:     catalog,
		rules:       rules,
		newSource:   sourceFactory(cfg.seed),
	}

	if gm.idleTimeout > 0 {
		go gm.reaperLoop(cfg)
	}

	return gm
}

func (gm *GameManager) getHub(cfg *Config, gameID string) *Hub {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	if hub, ok := gm.hubs[gameID]; ok {
		return hub
	}

	hub := newHub(cfg, gameID, gm.catalog, gm.rules, gm.newSource)
	gm.hubs[gameID] = hub

	go hub.run()

	return hub
}

// newGameID generates a crypto-random game ID and ensures it doesn't
// collide with existing games.
func (gm *GameManager) newGameID() string {
	const letters = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

	for {
		buf := make([]byte, 8*4)
		if _, err := rand.Read(buf); err != nil {
			panic("crypto/rand failure: " + err.Error())
		}

		out := make([]byte, 8)
		for i := range out {
			n := binary.LittleEndian.Uint32(buf[i*4:])
			out[i] = letters[n%uint32(len(letters))]
		}
		id := string(out)

		gm.mu.Lock()
		_, exists := gm.hubs[id]
		gm.mu.Unlock()

		if !exists {
			return id
		}
	}
}

// reaperLoop periodically removes hubs that have been idle longer than idleTimeout.
func (gm *GameManager) reaperLoop(cfg *Config) {
	ticker := time.NewTicker(gm.idleTimeout / 2)
	for range ticker.C {
		gm.reap(cfg, time.Now().Add(-gm.idleTimeout))
	}
}

func (gm *GameManager) reap(cfg *Config, cutoff time.Time) {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	for id, hub := range gm.hubs {
		hub.mu.RLock()
		last := hub.lastActive
		hub.mu.RUnlock()

		if last.Before(cutoff) {
			delete(gm.hubs, id)
			logf(cfg, "GAMES: Reaped idle game %s", id)
			go hub.closeAll()
		}
	}
}

// deliver hands v to the hub unless the hub has already shut down.
func deliver[T any](h *Hub, ch chan<- T, v T) bool {
	select {
	case ch <- v:
		return true
	case <-h.done:
		return false
	}
}

// WebSocket handler that picks the hub based on :gameid
func serveWSForManager(cfg *Config, gm *GameManager) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		gameID := ps.ByName("gameid")
		if gameID == "" {
			http.Error(w, "missing game id", http.StatusBadRequest)
			return
		}

		playerID := getOrSetPlayerID(w, r)
		if playerID == "" {
			http.Error(w, "unable to assign player id", http.StatusInternalServerError)
			return
		}

		hub := gm.getHub(cfg, gameID)

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logf(cfg, "ERROR: Websocket upgrade for %s failed: %v", realIP(r), err)
			return
		}

		client := &Client{
			conn:     conn,
			send:     make(chan any, 8),
			playerID: playerID,
		}

		if !deliver(hub, hub.register, client) {
			_ = conn.Close()
			return
		}

		go client.writePump()
		client.readPump(hub)
	}
}

func (c *Client) readPump(h *Hub) {
	defer func() {
		deliver(h, h.unreg, c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var msg ClientMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			return
		}

		var ok bool
		switch msg.Type {
		case "start", "next", "reset":
			ok = deliver(h, h.commands, hostCommand{
				client: c,
				msg:    msg,
			})
		case "answer":
			ok = deliver(h, h.answers, answerRequest{
				client: c,
				msg:    msg,
			})
		default:
			// ignore unknown types
			ok = true
		}
		if !ok {
			return
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// QR handler: generates a PNG QR code for the current game URL using go-qrcode.
func qrHandler(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	gameID := ps.ByName("gameid")
	if gameID == "" {
		http.Error(w, "missing game id", http.StatusBadRequest)
		return
	}

	// Derive scheme (respecting TLS and X-Forwarded-Proto if present).
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}

	// We are at /.../:gameid/qr; strip trailing "/qr" to get the game URL.
	path := strings.TrimSuffix(r.URL.Path, "/qr")
	url := scheme + "://" + r.Host + path

	const qrSize = 320 // mobile-friendly size
	png, err := qrcode.Encode(url, qrcode.Medium, qrSize)
	if err != nil {
		http.Error(w, "qr generation failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	_, _ = w.Write(png)
}

func getIndexHandler(cfg *Config, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		data, err := assets.ReadFile("assets/brandhue/index.html")
		if err != nil {
			errs <- err

			http.Error(w, "missing client page", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("Cache-Control", "public, max-age=3600")
		w.Header().Set("Expires", time.Now().Add(time.Hour).UTC().Format(http.TimeFormat))
		securityHeaders(cfg, w)
		_ = getOrSetPlayerID(w, r)

		_, err = w.Write(data)
		if err != nil {
			errs <- err
		}
	}
}

// redirectNewGame handles GET /path by generating a new random game ID
// (with server-side collision detection) and redirecting to /path/:gameid.
func redirectNewGame(cfg *Config, path string, gm *GameManager) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		gameID := gm.newGameID()
		logf(cfg, "GAMES: Created game %s/%s", path, gameID)
		http.Redirect(w, r, cfg.prefix+path+"/"+gameID, http.StatusTemporaryRedirect)
	}
}

// registerBrandGame sets up routes so that:
//   - $path                  → redirects to new random game (8-char ID)
//   - $path/:gameid          → HTML client
//   - $path/:gameid/ws       → WebSocket for that game
//   - $path/:gameid/qr       → PNG QR code for that game URL
func registerBrandGame(cfg *Config, path string, mux *httprouter.Router, errs chan<- error, catalog *quiz.Catalog, rules quiz.Rules) *GameManager {
	gm := newGameManager(cfg, catalog, rules)

	mux.GET(cfg.prefix+path, redirectNewGame(cfg, path, gm))

	mux.GET(cfg.prefix+path+"/:gameid", getIndexHandler(cfg, errs))

	mux.GET(cfg.prefix+path+"/:gameid/ws", serveWSForManager(cfg, gm))

	mux.GET(cfg.prefix+path+"/:gameid/qr", qrHandler)

	return gm
}
