// Package pathmgr is the top-level planner. Manager.Init turns a job into a
// data path plus one update, load and save path per chain, in a fixed order:
//
//	identifiers -> data-path -> sort -> update-path -> load-path -> save-path
//
// Init either succeeds completely or leaves the Manager untouched. After a
// successful Init the Manager is read-only and safe for concurrent readers.
package pathmgr
