// Package nettrust defines the contract for the network trust classifier
// that decides whether a request originates from a trusted local network.
//
// The classifier itself lives outside this core. Implementations must trust
// forwarded-address headers only when the immediate peer is a configured
// trusted proxy, checked hop by hop; otherwise the peer's own address
// decides, so an untrusted client cannot spoof locality with its own
// forwarded-for header. Its verdict gates the one-time administrative
// bootstrap and every local-only allow rule.
package nettrust

import "net/http"

// Classifier reports whether a request comes from a trusted local network.
type Classifier interface {
	Classify(r *http.Request) bool
}

// ClassifierFunc adapts a function to the Classifier interface.
type ClassifierFunc func(r *http.Request) bool

// Classify calls f.
func (f ClassifierFunc) Classify(r *http.Request) bool { return f(r) }

// Fixed returns a classifier with a constant verdict. Fixed(false) is the
// fail-closed default when no real classifier is wired.
func Fixed(isLocal bool) Classifier {
	return ClassifierFunc(func(*http.Request) bool { return isLocal })
}
