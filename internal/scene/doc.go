// Package scene implements the scene registry: an ordered collection of typed
// nodes with registry-assigned identity, shared ownership, and synchronous
// change notification.
//
// # Ownership
//
// CreateNode hands the caller a Handle, which is one share of ownership. The
// registry takes a share of its own in AddNode and gives it back in
// RemoveNode. A node is destroyed when the last share is released, so a node
// removed from the registry stays alive for as long as some caller still holds
// a handle, and a node still in the registry can never be destroyed by
// callers releasing their handles. Each handle releases at most once; there is
// no way to decrement a node's count past the shares actually held.
//
// # Notification
//
// Observers are called synchronously, on the calling goroutine, in the order
// they were registered. An observer may mutate the registry from inside its
// callback, including unregistering itself or any other observer. An observer
// unregistered during a dispatch is not called again; observers registered
// during a dispatch are first called for the next event.
//
// A Registry is not safe for concurrent use. Callbacks re-enter the registry
// on the same goroutine, so callers that need a multi-goroutine view should
// attach a pubsub.Publisher with WithPublisher and consume events there.
package scene
