package moonpsrv

import (
	"encoding/json"
	"log"
	"net/http"
)

// result is a handler's outcome: an HTTP status, a JSON body for the
// caller, and a log line for the operator. Adapted from the teacher's
// EndpointResult, trimmed to what moonpsrv's small surface needs.
type result struct {
	status int
	body   interface{}
	logMsg string
}

func jsonOK(body interface{}, logMsg string) result {
	return result{status: http.StatusOK, body: body, logMsg: logMsg}
}

func jsonCreated(body interface{}, logMsg string) result {
	return result{status: http.StatusCreated, body: body, logMsg: logMsg}
}

func jsonErr(status int, userMsg string, logMsg string) result {
	return result{status: status, body: map[string]string{"error": userMsg}, logMsg: logMsg}
}

func (r result) write(w http.ResponseWriter) {
	if r.logMsg != "" {
		log.Printf("%d %s", r.status, r.logMsg)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(r.status)
	if r.body != nil {
		if err := json.NewEncoder(w).Encode(r.body); err != nil {
			log.Printf("ERROR encode response body: %v", err)
		}
	}
}

func parseJSONBody(req *http.Request, v interface{}) error {
	dec := json.NewDecoder(req.Body)
	if err := dec.Decode(v); err != nil {
		return New("parse request body", ErrBodyUnmarshal, err)
	}
	return nil
}
