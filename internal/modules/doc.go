// Package modules decides which implementation modules an orchestration
// runtime assembles at startup.
//
// Given a Configuration it picks the primary storage bundle for the
// configured backend, the index module for the active search engine
// generation, the optional API pair and any operator extensions, and hands
// back one ordered Bundle for the dependency-injection container:
//
//	[primary backend bundle] + [index module] + [api, api-docs] + [extensions]
//
// For the MEMORY backend there is no external index, so the resolver also
// starts an embedded index engine (at most once) through a Bootstrapper.
// A failed bootstrap is a warning, never a startup abort.
package modules
