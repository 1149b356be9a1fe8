package workflow

// runContext is the request-scoped key-value state later steps read. It is
// owned exclusively by the single in-flight run; never shared across
// requests, so no locking.
type runContext struct {
	query        string
	onlyRetrieve bool

	finalQuery    string
	finalQuerySet bool

	// Set when the input language is outside the supported set; the canned
	// response must surface verbatim, so finalization skips back-translation.
	skipBackTranslation bool
}

func newRunContext(query string, onlyRetrieve bool) *runContext {
	return &runContext{query: query, onlyRetrieve: onlyRetrieve}
}

// setFinalQuery records the query actually used for retrieval. Set at most
// once per request, before any answer is generated.
func (rc *runContext) setFinalQuery(q string) {
	if rc.finalQuerySet {
		return
	}
	rc.finalQuery = q
	rc.finalQuerySet = true
}

// resolvedFinalQuery defaults to the original query when no retrieval query
// was ever resolved (early-exit paths).
func (rc *runContext) resolvedFinalQuery() string {
	if rc.finalQuerySet {
		return rc.finalQuery
	}
	return rc.query
}
