// Package ldbstore implements a store.Store that keeps exported strategy
// rows on disk in a LevelDB database.
//
// Node records are kept under the "n:" prefix and (hand, node) rows under
// "s:", so a full strategy table can be scanned by prefix.
package ldbstore
