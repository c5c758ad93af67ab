package types

// Version is one immutable snapshot in the history of a record.
type Version struct {
	EntryType  string      // record type name, e.g. "profile"
	Content    []byte      // serialized record, opaque to the ledger
	ContentRef ContentRef  // hash of EntryType and Content
	ActionRef  ActionRef   // the write that produced this version
	Author     IdentityKey // writer of this version
	Seq        Seq         // ledger write stamp
	Level      Level       // wall clock of the write, informational only
	Signature  []byte      // author's signature over ActionRef, empty if unsigned
}

// Relation links a version to its successor. A prior ActionRef can have more
// than one outgoing relation when independent writers update concurrently.
type Relation struct {
	From ActionRef
	To   ActionRef
	Seq  Seq
}

// IndexEdge makes Target discoverable from Root. Root is either a PathRef or
// the DeterministicRef of an identity key.
type IndexEdge struct {
	Root   ContentRef
	Target ContentRef
	Author IdentityKey
	Seq    Seq
}

// LatestRelation returns the relation with the highest Seq.
func LatestRelation(relations []Relation) (Relation, bool) {
	if len(relations) == 0 {
		return Relation{}, false
	}
	latest := relations[0]
	for _, r := range relations[1:] {
		if r.Seq > latest.Seq {
			latest = r
		}
	}
	return latest, true
}

// LatestEdge returns the edge with the highest Seq.
func LatestEdge(edges []IndexEdge) (IndexEdge, bool) {
	if len(edges) == 0 {
		return IndexEdge{}, false
	}
	latest := edges[0]
	for _, e := range edges[1:] {
		if e.Seq > latest.Seq {
			latest = e
		}
	}
	return latest, true
}
