// Package ref implements the quest resource addressing scheme: typed
// identifiers, service URIs, and syntactic classification of opaque
// identifier strings into resource kinds. Classification is a pure
// function of the string; no lookups are performed.
package ref

import (
	"errors"
	"fmt"
	"strings"
)

// Kind is the resource-type bucket a URI classifies into.
type Kind string

// Resource kinds.
const (
	KindCollection Kind = "collections"
	KindService    Kind = "services"
	KindPublisher  Kind = "publishers"
	KindFeature    Kind = "features"
	KindDataset    Kind = "datasets"
)

// URI scheme prefixes.
const (
	servicePrefix   = "svc://"
	publisherPrefix = "pub://"
)

// Parse and classification errors.
var (
	ErrEmptyRef     = errors.New("empty resource reference")
	ErrInvalidRef   = errors.New("invalid resource reference")
	ErrKindExcluded = errors.New("resource kind not allowed")
	ErrMixedKinds   = errors.New("uris must all be of the same kind")
)

// Ref is a parsed resource reference. Kind is always set; the remaining
// fields depend on it. Service refs carry Provider/Service/Feature,
// everything else carries ID (an identifier token or collection name).
type Ref struct {
	Kind     Kind
	Provider string
	Service  string
	Feature  string
	ID       string
}

// Parse converts a URI string into a typed Ref. Unlike KindOf it rejects
// malformed input: empty strings and scheme prefixes without a body are
// errors rather than falling through to the collection bucket.
func Parse(uri string) (Ref, error) {
	if uri == "" {
		return Ref{}, ErrEmptyRef
	}

	switch {
	case strings.HasPrefix(uri, servicePrefix):
		provider, service, feature := ParseServiceURI(uri)
		if provider == "" {
			return Ref{}, fmt.Errorf("%w: %q", ErrInvalidRef, uri)
		}
		return Ref{Kind: KindService, Provider: provider, Service: service, Feature: feature}, nil

	case strings.HasPrefix(uri, publisherPrefix):
		id := strings.TrimPrefix(uri, publisherPrefix)
		if id == "" {
			return Ref{}, fmt.Errorf("%w: %q", ErrInvalidRef, uri)
		}
		return Ref{Kind: KindPublisher, ID: id}, nil
	}

	if IsID(uri) {
		switch uri[0] {
		case 'f':
			return Ref{Kind: KindFeature, ID: uri}, nil
		case 'd':
			return Ref{Kind: KindDataset, ID: uri}, nil
		}
	}

	return Ref{Kind: KindCollection, ID: uri}, nil
}

// String reconstructs the URI form of the reference.
func (r Ref) String() string {
	switch r.Kind {
	case KindService:
		return ServiceURI(r.Provider, r.Service, r.Feature)
	case KindPublisher:
		return publisherPrefix + r.ID
	default:
		return r.ID
	}
}

// KindOf classifies a URI string into its resource kind. It never fails;
// anything that is not a service URI, publisher URI, or tagged identifier
// lands in the collection bucket.
func KindOf(uri string) Kind {
	if IsID(uri) {
		switch uri[0] {
		case 'f':
			return KindFeature
		case 'd':
			return KindDataset
		}
		return KindCollection
	}
	if strings.HasPrefix(uri, servicePrefix) {
		return KindService
	}
	if strings.HasPrefix(uri, publisherPrefix) {
		return KindPublisher
	}
	return KindCollection
}

// ParseServiceURI splits a service URI into provider, service, and feature
// segments. Missing segments come back empty. The svc:// prefix is
// optional; bare "provider:service/feature" forms parse the same way.
//
//	usgs-nwis:iv/01529500  ->  ("usgs-nwis", "iv", "01529500")
//	gebco-bathymetry       ->  ("gebco-bathymetry", "", "")
func ParseServiceURI(uri string) (provider, service, feature string) {
	body := uri
	if i := strings.Index(body, "://"); i >= 0 {
		body = body[i+3:]
	}

	svc := body
	if i := strings.Index(body, "/"); i >= 0 {
		svc, feature = body[:i], body[i+1:]
	}

	provider = svc
	if i := strings.Index(svc, ":"); i >= 0 {
		provider, service = svc[:i], svc[i+1:]
	}
	return provider, service, feature
}

// ServiceURI builds a svc:// URI from provider, service, and an optional
// feature segment.
func ServiceURI(provider, service, feature string) string {
	uri := fmt.Sprintf("%s%s:%s", servicePrefix, provider, service)
	if feature != "" {
		uri = uri + "/" + feature
	}
	return uri
}
