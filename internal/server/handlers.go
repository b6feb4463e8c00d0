package server

import (
	"database/sql"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/roach88/spearfished/internal/catalog"
	"github.com/roach88/spearfished/internal/geo"
	"github.com/roach88/spearfished/internal/identity"
	"github.com/roach88/spearfished/internal/post"
	"github.com/roach88/spearfished/internal/publish"
)

// OK is the status of every successful response.
const OK = "OK"

const (
	maxUploadBytes = 20 << 20
	maxFormMemory  = 8 << 20
)

type healthResponse struct {
	Status    string `json:"status"`
	FeedState string `json:"feed_state"`
}

type feedResponse struct {
	Status  string      `json:"status"`
	Version uint64      `json:"version"`
	State   string      `json:"state"`
	Error   string      `json:"error,omitempty"`
	Dropped int         `json:"dropped"`
	Posts   []post.Post `json:"posts"`
}

type pinResponse struct {
	ID           string         `json:"id"`
	Username     string         `json:"username"`
	FishType     string         `json:"fishType"`
	LocationName string         `json:"locationName,omitempty"`
	ImageURL     string         `json:"imageUrl"`
	Location     geo.Coordinate `json:"location"`
}

type mapResponse struct {
	Status string         `json:"status"`
	Center geo.Coordinate `json:"center"`
	Pins   []pinResponse  `json:"pins"`
}

type postResponse struct {
	Status string    `json:"status"`
	Post   post.Post `json:"post"`
}

type speciesResponse struct {
	Status  string            `json:"status"`
	Species []catalog.Species `json:"species"`
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionResponse struct {
	Status string `json:"status"`
	UID    string `json:"uid"`
	Email  string `json:"email"`
	Token  string `json:"token"`
}

func (s *Server) health(_ *requestContext, w http.ResponseWriter, _ *http.Request) *HTTPError {
	resp := healthResponse{Status: OK, FeedState: "disabled"}
	if s.deps.Feed != nil {
		resp.FeedState = s.deps.Feed.Current().State.String()
	}
	writeJSON(w, http.StatusOK, resp)
	return nil
}

func (s *Server) feed(_ *requestContext, w http.ResponseWriter, _ *http.Request) *HTTPError {
	if s.deps.Feed == nil {
		return &HTTPError{Status: http.StatusServiceUnavailable, Error: "feed not running", ErrorCode: ErrUnavailable}
	}
	snap := s.deps.Feed.Current()

	resp := feedResponse{
		Status:  OK,
		Version: snap.Version,
		State:   snap.State.String(),
		Dropped: snap.Dropped,
		Posts:   snap.Posts,
	}
	if resp.Posts == nil {
		resp.Posts = []post.Post{}
	}
	if snap.Err != nil {
		resp.Error = snap.Err.Error()
	}
	writeJSON(w, http.StatusOK, resp)
	return nil
}

func (s *Server) feedMap(_ *requestContext, w http.ResponseWriter, _ *http.Request) *HTTPError {
	if s.deps.Feed == nil {
		return &HTTPError{Status: http.StatusServiceUnavailable, Error: "feed not running", ErrorCode: ErrUnavailable}
	}
	pins := s.deps.Feed.Current().Pins()

	resp := mapResponse{Status: OK, Center: geo.DefaultMapCenter, Pins: make([]pinResponse, 0, len(pins))}
	for _, pin := range pins {
		resp.Pins = append(resp.Pins, pinResponse{
			ID:           pin.Item.ID,
			Username:     pin.Item.Username,
			FishType:     pin.Item.FishType,
			LocationName: pin.Item.LocationName,
			ImageURL:     pin.Item.ImageURL,
			Location:     pin.Coordinate,
		})
	}
	if len(pins) > 0 {
		resp.Center = pins[0].Coordinate
	}
	writeJSON(w, http.StatusOK, resp)
	return nil
}

func (s *Server) createPost(rc *requestContext, w http.ResponseWriter, r *http.Request) *HTTPError {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxFormMemory); err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			return &HTTPError{IError: err, Status: http.StatusRequestEntityTooLarge, Error: "image too large", ErrorCode: ErrInvalidData}
		}
		return badRequest(ErrParsing, "expected a multipart form", err)
	}

	req := publish.Request{
		Username:     r.FormValue("username"),
		FishType:     r.FormValue("fishType"),
		Description:  r.FormValue("description"),
		LocationName: r.FormValue("locationName"),
	}
	if strings.TrimSpace(req.Username) == "" {
		req.Username = rc.identity.DisplayLabel()
	}

	file, hdr, err := r.FormFile("image")
	switch {
	case errors.Is(err, http.ErrMissingFile):
	case err != nil:
		return badRequest(ErrParsing, "unreadable image", err)
	default:
		defer file.Close()
		req.Image, err = io.ReadAll(file)
		if err != nil {
			return badRequest(ErrParsing, "unreadable image", err)
		}
		if ct := hdr.Header.Get("Content-Type"); ct != "application/octet-stream" {
			req.ContentType = ct
		}
	}

	device, herr := formCoordinate(r)
	if herr != nil {
		return herr
	}
	req.DeviceLocation = device

	p, err := s.deps.Publisher.Publish(r.Context(), req)
	if err != nil {
		return publishError(err)
	}

	s.logger.Info("post created", "post_id", p.ID, "uid", rc.identity.UID)
	writeJSON(w, http.StatusCreated, postResponse{Status: OK, Post: p})
	return nil
}

// formCoordinate reads the optional latitude/longitude pair.
func formCoordinate(r *http.Request) (*geo.Coordinate, *HTTPError) {
	lat, lon := r.FormValue("latitude"), r.FormValue("longitude")
	if lat == "" && lon == "" {
		return nil, nil
	}
	if lat == "" || lon == "" {
		return nil, badRequest(ErrInvalidData, "latitude and longitude must be sent together", nil)
	}

	la, err := strconv.ParseFloat(lat, 64)
	if err != nil {
		return nil, badRequest(ErrInvalidData, "invalid latitude", err)
	}
	lo, err := strconv.ParseFloat(lon, 64)
	if err != nil {
		return nil, badRequest(ErrInvalidData, "invalid longitude", err)
	}
	return &geo.Coordinate{Latitude: la, Longitude: lo}, nil
}

func (s *Server) species(_ *requestContext, w http.ResponseWriter, r *http.Request) *HTTPError {
	if s.deps.Species == nil {
		return &HTTPError{Status: http.StatusServiceUnavailable, Error: "species catalog not configured", ErrorCode: ErrUnavailable}
	}
	all, err := s.deps.Species.All(r.Context())
	if err != nil {
		return &HTTPError{IError: err, Status: http.StatusBadGateway, Error: "species source unavailable", ErrorCode: ErrUnavailable}
	}

	if q := r.URL.Query().Get("q"); q != "" {
		sp, ok := catalog.Match(all, q)
		if !ok {
			return &HTTPError{Status: http.StatusNotFound, Error: "no species matches " + strconv.Quote(q), ErrorCode: ErrNotFound}
		}
		all = []catalog.Species{sp}
	}

	writeJSON(w, http.StatusOK, speciesResponse{Status: OK, Species: all})
	return nil
}

func (s *Server) getBlob(_ *requestContext, w http.ResponseWriter, r *http.Request) *HTTPError {
	key := mux.Vars(r)["key"]
	b, err := s.deps.Blobs.Get(r.Context(), key)
	if errors.Is(err, sql.ErrNoRows) {
		return &HTTPError{Status: http.StatusNotFound, Error: "no such image", ErrorCode: ErrNotFound}
	}
	if err != nil {
		return internalError("read image", err)
	}

	w.Header().Set("Content-Type", b.ContentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(b.Data)))
	w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
	w.WriteHeader(http.StatusOK)
	w.Write(b.Data)
	return nil
}

func decodeCredentials(r *http.Request) (credentials, *HTTPError) {
	var c credentials
	dec := json.NewDecoder(io.LimitReader(r.Body, 1<<16))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&c); err != nil {
		return c, badRequest(ErrParsing, "expected {\"email\", \"password\"}", err)
	}
	return c, nil
}

func (s *Server) signUp(_ *requestContext, w http.ResponseWriter, r *http.Request) *HTTPError {
	c, herr := decodeCredentials(r)
	if herr != nil {
		return herr
	}
	id, err := s.deps.Accounts.Register(r.Context(), c.Email, c.Password)
	if err != nil {
		return authError(err)
	}
	return s.writeSession(w, http.StatusCreated, id)
}

func (s *Server) signIn(_ *requestContext, w http.ResponseWriter, r *http.Request) *HTTPError {
	c, herr := decodeCredentials(r)
	if herr != nil {
		return herr
	}
	id, err := s.deps.Accounts.Authenticate(r.Context(), c.Email, c.Password)
	if err != nil {
		return authError(err)
	}
	return s.writeSession(w, http.StatusOK, id)
}

func (s *Server) writeSession(w http.ResponseWriter, status int, id identity.Identity) *HTTPError {
	token, err := s.deps.Accounts.Issue(id)
	if err != nil {
		return authError(err)
	}
	writeJSON(w, status, sessionResponse{Status: OK, UID: id.UID, Email: id.Email, Token: token})
	return nil
}
