// Package api defines the JSON payloads served over HTTP and the
// conversions from storage records into them. View types are the wire
// contract; store types never cross the API boundary directly.
package api
