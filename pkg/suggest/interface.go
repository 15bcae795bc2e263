// Package suggest holds the prefix index behind trip typeahead.
//
// Words (trip names and resort names) are inserted once at load time. Every
// node of the trie remembers the first few words that passed through it, so a
// prefix lookup is a walk of len(prefix) steps and never visits a subtree.
package suggest

// Indexer defines the interface for typeahead indexes
type Indexer interface {
	// Insert adds a word to the index
	Insert(word string)

	// Search returns at most MaxSuggestions words sharing prefix
	Search(prefix string) []string

	// Stats returns statistics about the index
	Stats() map[string]int
}

var _ Indexer = (*PrefixIndex)(nil)
