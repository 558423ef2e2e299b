// Package fdp is a client for the FDP data-platform HTTP service.
//
// Every operation maps to exactly one endpoint and one HTTP verb. Requests
// carry the X-Uber-Source and X-Auth-Params-Email headers; responses are
// passed through Normalize so callers get either the raw text or the decoded
// JSON value. Application failures are reported only through the returned
// status code and text, never as Go errors. Errors are reserved for
// transport faults and for bodies that declare JSON but fail to decode.
package fdp
