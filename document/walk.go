package document

import "errors"

// SkipSubtree can be returned by a WalkFunc to prune traversal below the
// current node without stopping the walk.
var SkipSubtree = errors.New("skip this subtree")

// WalkFunc is invoked for every node during a walk. Returning SkipSubtree
// prunes the node's children; any other non-nil error aborts the walk and
// is returned from Walk.
type WalkFunc func(addr Address, n *Node) error

// Walk performs a depth-first traversal of the document, invoking fn for
// every node including the root. Object members are visited in source key
// order; array elements in array order, addressed by content fingerprint.
// The walk is stateless and restartable: calling Walk again yields the
// same finite sequence.
func (d *Document) Walk(fn WalkFunc) error {
	err := walkNode(Address{}, d.root, fn)
	if errors.Is(err, SkipSubtree) {
		return nil
	}
	return err
}

func walkNode(addr Address, n *Node, fn WalkFunc) error {
	if err := fn(addr, n); err != nil {
		if errors.Is(err, SkipSubtree) {
			return nil
		}
		return err
	}
	switch n.Kind {
	case KindObject:
		for _, k := range n.Keys() {
			if err := walkNode(addr.Child(Key(k)), n.Field(k), fn); err != nil {
				return err
			}
		}
	case KindArray:
		for _, item := range n.Items {
			if err := walkNode(addr.Child(Elem(Fingerprint(item))), item, fn); err != nil {
				return err
			}
		}
	}
	return nil
}

// Get resolves an address against the document and returns the node it
// denotes, or nil when any segment fails to resolve. Key segments resolve
// against objects by name; element segments resolve against arrays by
// fingerprinting each element, independent of position.
func (d *Document) Get(addr Address) *Node {
	return resolve(d.root, addr)
}

// Get resolves an address relative to n. See [Document.Get].
func (n *Node) Get(addr Address) *Node {
	return resolve(n, addr)
}

func resolve(n *Node, addr Address) *Node {
	current := n
	for _, seg := range addr {
		if current == nil {
			return nil
		}
		if seg.IsElem() {
			if current.Kind != KindArray {
				return nil
			}
			current = findByFingerprint(current, seg.Fingerprint())
			continue
		}
		if current.Kind != KindObject {
			return nil
		}
		current = current.Field(seg.KeyName())
	}
	return current
}

// findByFingerprint returns the first array element whose content
// fingerprint matches fp, or nil.
func findByFingerprint(arr *Node, fp string) *Node {
	for _, item := range arr.Items {
		if Fingerprint(item) == fp {
			return item
		}
	}
	return nil
}
