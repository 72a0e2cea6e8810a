// Package inspect exposes a small debug HTTP service for working with
// marshalled request blobs: decode a posted blob to JSON, encode a JSON
// description back into a blob. Meant for development and integration
// debugging, not for production traffic.
package inspect

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/gorilla/mux"

	"httpbridge-core/internal/bridge"
	"httpbridge-core/internal/core/log"
	"httpbridge-core/internal/errors"
	"httpbridge-core/internal/httpmsg"
	"httpbridge-core/internal/marshal"
	"httpbridge-core/internal/wire"
)

// maxBlobSize bounds posted blobs; inspection targets are small.
const maxBlobSize = 8 << 20

// HeaderView is one header in the JSON representation.
type HeaderView struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// RequestView is the JSON representation of a decoded request blob.
type RequestView struct {
	Version uint32       `json:"version"`
	Family  string       `json:"family"`
	Method  string       `json:"method"`
	Path    string       `json:"path"`
	Headers []HeaderView `json:"headers"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// Service is the inspection HTTP service.
type Service struct {
	builder *bridge.RequestBuilder
	logger  log.Logger
}

// NewService creates a service decoding through the given builder.
func NewService(builder *bridge.RequestBuilder) *Service {
	return &Service{
		builder: builder,
		logger:  log.Default().WithField("component", "inspect"),
	}
}

// Router builds the HTTP routing table.
func (s *Service) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/api/v1/decode", s.handleDecode).Methods(http.MethodPost)
	r.HandleFunc("/api/v1/decode/headers", s.handleDecodeHeaders).Methods(http.MethodPost)
	r.HandleFunc("/api/v1/encode", s.handleEncode).Methods(http.MethodPost)
	return r
}

func (s *Service) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Service) handleDecode(w http.ResponseWriter, r *http.Request) {
	blob, ok := s.readBlob(w, r)
	if !ok {
		return
	}

	msg, err := s.builder.DecodeRequest(blob, bridge.NilHandle)
	if err != nil {
		s.writeError(w, err)
		return
	}
	defer msg.Release()

	s.writeJSON(w, http.StatusOK, viewOf(msg))
}

func (s *Service) handleDecodeHeaders(w http.ResponseWriter, r *http.Request) {
	blob, ok := s.readBlob(w, r)
	if !ok {
		return
	}

	headers := httpmsg.NewHeaderList()
	if err := marshal.DecodeHeaders(headers, wire.NewCursor(blob)); err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, headerViews(headers))
}

func (s *Service) handleEncode(w http.ResponseWriter, r *http.Request) {
	var view RequestView
	body := http.MaxBytesReader(w, r.Body, maxBlobSize)
	if err := json.NewDecoder(body).Decode(&view); err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "bad_request", Details: err.Error()})
		return
	}

	msg, err := messageFrom(&view)
	if err != nil {
		s.writeError(w, err)
		return
	}
	defer msg.Release()

	buf := wire.GetBuffer()
	defer wire.PutBuffer(buf)
	if err := marshal.EncodeRequest(buf, msg); err != nil {
		s.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/octet-stream")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(buf.Bytes()); err != nil {
		s.logger.WithError(err).Warn("writing encoded blob failed")
	}
}

func (s *Service) readBlob(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	blob, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBlobSize))
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "bad_request", Details: err.Error()})
		return nil, false
	}
	return blob, true
}

func (s *Service) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	name := "internal"
	if errors.Is(err, errors.ErrInvalidArgument) {
		status = http.StatusBadRequest
		name = "invalid_argument"
	}
	s.logger.WithError(err).Debug("request rejected")
	s.writeJSON(w, status, errorResponse{Error: name, Details: err.Error()})
}

func (s *Service) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.WithError(err).Warn("writing response failed")
	}
}

func viewOf(msg *httpmsg.Message) *RequestView {
	return &RequestView{
		Version: uint32(msg.Version()),
		Family:  msg.Version().String(),
		Method:  string(msg.Method()),
		Path:    string(msg.Path()),
		Headers: headerViews(msg.Headers()),
	}
}

func headerViews(headers *httpmsg.HeaderList) []HeaderView {
	views := make([]HeaderView, 0, headers.Len())
	for i := 0; i < headers.Len(); i++ {
		h, _ := headers.At(i)
		views = append(views, HeaderView{Name: string(h.Name), Value: string(h.Value)})
	}
	return views
}

func messageFrom(view *RequestView) (*httpmsg.Message, error) {
	var msg *httpmsg.Message
	switch httpmsg.Version(view.Version) {
	case httpmsg.VersionHTTP2:
		msg = httpmsg.NewHTTP2Request()
	case httpmsg.VersionHTTP1:
		msg = httpmsg.NewRequest()
	default:
		return nil, errors.Wrapf(errors.ErrInvalidArgument, "unknown version %d", view.Version)
	}

	if msg.Version() != httpmsg.VersionHTTP2 {
		if err := msg.SetMethod([]byte(view.Method)); err != nil {
			msg.Release()
			return nil, err
		}
		if err := msg.SetPath([]byte(view.Path)); err != nil {
			msg.Release()
			return nil, err
		}
	} else if view.Method != "" || view.Path != "" {
		msg.Release()
		return nil, errors.Wrap(errors.ErrInvalidArgument, "multiplexed requests carry no method or path")
	}

	for _, h := range view.Headers {
		msg.Headers().Add([]byte(h.Name), []byte(h.Value))
	}
	return msg, nil
}
