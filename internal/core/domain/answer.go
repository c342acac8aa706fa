package domain

// RetrievedSegment pairs a segment with its similarity score for a query.
type RetrievedSegment struct {
	// Segment is the matched segment.
	Segment Segment

	// Score is the cosine similarity against the query embedding.
	Score float64
}

// Citation identifies a segment that grounded an answer.
type Citation struct {
	// SegmentID is the cited segment.
	SegmentID string

	// SegmentIndex is the segment's ordinal position in the document.
	SegmentIndex int

	// Pages lists the 1-based page numbers the segment spans.
	Pages []int
}

// Answer is the result of asking a question against a document.
type Answer struct {
	// Text is the generated answer.
	Text string

	// Citations lists the segments actually included in the grounding
	// context, in relevance order. Segments dropped by context
	// truncation are not cited.
	Citations []Citation

	// Grounded is false when retrieval produced no usable evidence and
	// the fixed insufficient-grounding response was returned without
	// calling the generative model.
	Grounded bool
}

// InsufficientGroundingText is the deterministic response returned when
// retrieval yields no segments above the relevance threshold. It is never
// produced by the generative model.
const InsufficientGroundingText = "I could not find relevant information in the document to answer that question."
