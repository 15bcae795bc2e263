package suggest

import "strings"

// MaxSuggestions is the number of words a single trie node keeps.
const MaxSuggestions = 5

type trieNode struct {
	children    map[rune]*trieNode
	isEndOfWord bool
	suggestions []string
}

func newTrieNode() *trieNode {
	return &trieNode{children: make(map[rune]*trieNode)}
}

// offer appends word while the node still has a free slot.
// First come first served, there is no eviction.
func (n *trieNode) offer(word string) {
	if len(n.suggestions) < MaxSuggestions {
		n.suggestions = append(n.suggestions, word)
	}
}

// PrefixIndex is a character trie where every node keeps the first
// MaxSuggestions original-case words inserted through it.
//
// A PrefixIndex is not safe for concurrent use. It is meant to be owned by a
// single component (the catalog) and rebuilt instead of mutated after load.
type PrefixIndex struct {
	root      *trieNode
	nodeCount int
	wordCount int
}

// NewPrefixIndex returns an empty index.
func NewPrefixIndex() *PrefixIndex {
	return &PrefixIndex{root: newTrieNode(), nodeCount: 1}
}

// Insert walks the lowercase form of word, creating nodes as needed, and
// offers the original word to every node on the path, root included.
// The empty string only marks the root as a word end.
func (idx *PrefixIndex) Insert(word string) {
	idx.wordCount++
	node := idx.root
	if word == "" {
		node.isEndOfWord = true
		return
	}
	node.offer(word)

	for _, r := range strings.ToLower(word) {
		child, ok := node.children[r]
		if !ok {
			child = newTrieNode()
			node.children[r] = child
			idx.nodeCount++
		}
		node = child
		node.offer(word)
	}
	node.isEndOfWord = true
}

// Search returns a copy of the suggestions stored at the node for prefix,
// or an empty slice when no inserted word starts with it.
func (idx *PrefixIndex) Search(prefix string) []string {
	node := idx.find(prefix)
	if node == nil {
		return []string{}
	}
	out := make([]string, len(node.suggestions))
	copy(out, node.suggestions)
	return out
}

// HasWord reports whether word, compared case-insensitively, was inserted.
func (idx *PrefixIndex) HasWord(word string) bool {
	node := idx.find(word)
	return node != nil && node.isEndOfWord
}

func (idx *PrefixIndex) find(prefix string) *trieNode {
	node := idx.root
	for _, r := range strings.ToLower(prefix) {
		child, ok := node.children[r]
		if !ok {
			return nil
		}
		node = child
	}
	return node
}

// Stats returns basic counters about the index.
func (idx *PrefixIndex) Stats() map[string]int {
	return map[string]int{
		"insertedWords": idx.wordCount,
		"nodes":         idx.nodeCount,
		"rootWords":     len(idx.root.suggestions),
	}
}
