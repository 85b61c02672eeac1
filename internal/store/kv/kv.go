// Package kv is the client-resident key-value store the local todo list lives in.
package kv

// Store is a string key-value store. A missing key is reported with ok=false,
// not an error.
type Store interface {
	Get(key string) (value string, ok bool, err error)
	Set(key, value string) error
	Remove(key string) error
}
