package server

import (
	"errors"
	"fmt"
	"mime"
	"net/http"
	"strconv"
	"strings"
)

// Header names
const (
	HeaderAPIVersion = "API-Version"
	// media type parameter carrying the version: application/json; version=2
	versionParam = "version"
)

// ErrNotAcceptable indicates the requested version is outside what the
// resource can represent.
var ErrNotAcceptable = errors.New("requested API version not acceptable")

// requestedVersion reads the version a client pinned, in order of
// precedence: the API-Version header, a version parameter on Accept, and a
// version parameter on Content-Type.
func requestedVersion(r *http.Request) (v int, ok bool, err error) {
	if raw := strings.TrimSpace(r.Header.Get(HeaderAPIVersion)); raw != "" {
		return parseVersion(raw)
	}
	for _, accept := range splitAccept(r.Header.Get("Accept")) {
		if raw, found := mediaParam(accept, versionParam); found {
			return parseVersion(raw)
		}
	}
	if raw, found := mediaParam(r.Header.Get("Content-Type"), versionParam); found {
		return parseVersion(raw)
	}
	return 0, false, nil
}

// negotiate checks a requested version against the latest the resource
// knows.
func negotiate(r *http.Request, latest int) (v int, ok bool, err error) {
	v, ok, err = requestedVersion(r)
	if err != nil || !ok {
		return v, ok, err
	}
	if v > latest {
		return 0, false, fmt.Errorf("%w: %d is newer than %d", ErrNotAcceptable, v, latest)
	}
	return v, true, nil
}

func parseVersion(raw string) (int, bool, error) {
	v, err := strconv.Atoi(strings.TrimPrefix(strings.TrimSpace(raw), "v"))
	if err != nil || v < 0 {
		return 0, false, fmt.Errorf("%w: %q", ErrNotAcceptable, raw)
	}
	return v, true, nil
}

func splitAccept(h string) []string {
	if h == "" {
		return nil
	}
	parts := strings.Split(h, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func mediaParam(mediaType, name string) (string, bool) {
	if mediaType == "" {
		return "", false
	}
	_, params, err := parseMediaType(mediaType)
	if err != nil {
		return "", false
	}
	v, ok := params[name]
	return v, ok
}

func parseMediaType(v string) (string, map[string]string, error) {
	return mime.ParseMediaType(v)
}

func setVersionHeaders(w http.ResponseWriter, version int) {
	w.Header().Add("Vary", HeaderAPIVersion)
	w.Header().Add("Vary", "Accept")
	w.Header().Set(HeaderAPIVersion, strconv.Itoa(version))
}
