// Package resilience groups the fault tolerance patterns used around
// the extraction bridge: circuit breaking for a flapping extractor and
// retry with exponential backoff for transient failures.
//
//	cb := circuitbreaker.New(circuitbreaker.ExtractorConfig())
//	result, err := cb.Execute(func() (interface{}, error) {
//	    return callExtractor()
//	})
//
//	err := retry.WithBackoff(ctx, retry.ExtractorConfig(), func() error {
//	    return performOperation()
//	})
package resilience
