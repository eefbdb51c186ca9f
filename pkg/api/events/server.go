package events

import (
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/japap-media/server/pkg/api/events/packets"
	"github.com/japap-media/server/pkg/comments"
	"github.com/japap-media/server/pkg/events"
	"github.com/japap-media/server/pkg/feed"
	"github.com/japap-media/server/pkg/logging"
	"github.com/japap-media/server/pkg/sessions"
	"github.com/sirupsen/logrus"
	"github.com/vmihailenco/msgpack/v5"
)

type Server struct {
	httpMux  *http.ServeMux
	upgrader websocket.Upgrader

	sync   *feed.Synchronizer
	signer *sessions.Signer

	sessions     map[string]*Session
	sessionsLock sync.RWMutex

	nextNonce  int64
	nonceMutex sync.Mutex
}

// NewServer creates the gateway and hooks it up as the relay for comment
// events coming through the synchronizer.
func NewServer(synchronizer *feed.Synchronizer, signer *sessions.Signer) *Server {
	s := &Server{
		httpMux: http.NewServeMux(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:    1024,
			WriteBufferSize:   1024,
			CheckOrigin:       func(r *http.Request) bool { return true },
			EnableCompression: true,
		},

		sync:   synchronizer,
		signer: signer,

		sessions: make(map[string]*Session),
	}
	s.httpMux.HandleFunc("/", s.handleConnect)
	synchronizer.SetRelay(s.relay)

	return s
}

func (s *Server) Handler() http.Handler {
	return s.httpMux
}

func (s *Server) Run(exposeAddr string) error {
	logging.Log.WithField("address", exposeAddr).Info("serving events gateway")
	return http.ListenAndServe(exposeAddr, s.httpMux)
}

// SessionCount is the number of live websocket sessions.
func (s *Server) SessionCount() int {
	s.sessionsLock.RLock()
	defer s.sessionsLock.RUnlock()
	return len(s.sessions)
}

func (s *Server) handleConnect(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	format, ok := parseFormat(q.Get("format"))
	if !ok {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte("Unknown format."))
		return
	}

	// Viewers without a token get a read-only, unpersonalised feed
	var viewerId string
	if token := q.Get("token"); token != "" {
		sess, err := s.signer.Parse(token)
		if err != nil {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte("Invalid token."))
			return
		}
		viewerId = sess.ViewerId
	}

	// Upgrade connection, the upgrader writes its own error response
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	session := newSession(s, conn, viewerId, format)
	s.register(session)
	defer s.unregister(session)

	session.run()
}

func (s *Server) register(session *Session) {
	s.sessionsLock.Lock()
	defer s.sessionsLock.Unlock()
	s.sessions[session.id] = session
}

func (s *Server) unregister(session *Session) {
	s.sessionsLock.Lock()
	defer s.sessionsLock.Unlock()
	delete(s.sessions, session.id)
}

func (s *Server) getNextNonce() int64 {
	s.nonceMutex.Lock()
	defer s.nonceMutex.Unlock()
	s.nextNonce++
	return s.nextNonce
}

// relay turns comment events into packets. Post events never get here, they
// reach clients as new feed snapshots.
func (s *Server) relay(op uint8, body []byte) {
	switch op {
	case events.OpCreateComment:
		var evData comments.CreateCommentEvent
		if err := msgpack.Unmarshal(body, &evData); err != nil {
			logging.Log.WithError(err).Warn("dropping malformed create comment event")
			return
		}
		s.broadcastComment(packets.CmdCommentCreate, &evData.Comment)

	case events.OpUpdateComment:
		var evData comments.UpdateCommentEvent
		if err := msgpack.Unmarshal(body, &evData); err != nil {
			logging.Log.WithError(err).Warn("dropping malformed update comment event")
			return
		}
		s.broadcastComment(packets.CmdCommentUpdate, &evData.Comment)

	default:
		logging.Log.WithFields(logrus.Fields{"op": op}).Debug("ignoring event")
	}
}

func (s *Server) broadcastComment(cmd string, c *comments.Comment) {
	s.sessionsLock.RLock()
	defer s.sessionsLock.RUnlock()

	// my_reaction differs per viewer, so every session gets its own rendering
	for _, session := range s.sessions {
		session.enqueue(&packets.V0Packet{
			Cmd: cmd,
			Val: c.V0(session.viewerId),
		})
	}
}
