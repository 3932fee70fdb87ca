package paginate

import (
	"context"
	"fmt"

	"github.com/tidwall/gjson"
)

// Call performs one page request. The params map carries the operation's
// request parameters, including the continuation tokens the pager injects.
type Call func(ctx context.Context, params map[string]any) ([]byte, error)

// Pager drives a paginated operation page by page, copying the response's
// output tokens into the next request's input parameters.
type Pager struct {
	spec   Spec
	call   Call
	params map[string]any
	done   bool
}

// NewPager creates a Pager for one traversal. The params map is copied, so
// the caller's map is not mutated.
func NewPager(spec Spec, call Call, params map[string]any) (*Pager, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	if call == nil {
		return nil, fmt.Errorf("pager needs a call function")
	}

	p := &Pager{
		spec:   spec,
		call:   call,
		params: make(map[string]any, len(params)),
	}
	for k, v := range params {
		p.params[k] = v
	}
	return p, nil
}

// SetLimit sets the page size parameter named by the spec's LimitKey.
func (p *Pager) SetLimit(limit int) error {
	if p.spec.LimitKey == "" {
		return fmt.Errorf("operation has no limit key")
	}
	p.params[p.spec.LimitKey] = limit
	return nil
}

// HasMorePages reports whether another page is available.
func (p *Pager) HasMorePages() bool {
	return !p.done
}

// NextPage fetches the next page and returns the raw response body.
// After the last page, HasMorePages reports false.
func (p *Pager) NextPage(ctx context.Context) ([]byte, error) {
	if p.done {
		return nil, fmt.Errorf("pagination exhausted")
	}

	body, err := p.call(ctx, p.params)
	if err != nil {
		p.done = true
		return nil, err
	}

	p.advance(body)
	return body, nil
}

// advance inspects a response body and either primes the next request's
// tokens or marks the traversal finished.
func (p *Pager) advance(body []byte) {
	if p.spec.MoreResults != "" {
		more := gjson.GetBytes(body, p.spec.MoreResults)
		if !more.Exists() || !more.Bool() {
			p.done = true
			return
		}
	}

	// A missing or null output token ends the traversal
	anyToken := false
	for i, outPath := range p.spec.OutputToken {
		token := gjson.GetBytes(body, outPath)
		if !token.Exists() || token.Type == gjson.Null || token.String() == "" {
			delete(p.params, p.spec.InputToken[i])
			continue
		}
		p.params[p.spec.InputToken[i]] = token.Value()
		anyToken = true
	}

	if !anyToken {
		p.done = true
	}
}

// Results extracts the page's items using the spec's ResultKey. With no
// ResultKey the whole body is the single result.
func (p *Pager) Results(body []byte) []gjson.Result {
	if p.spec.ResultKey == "" {
		return []gjson.Result{gjson.ParseBytes(body)}
	}
	return gjson.GetBytes(body, p.spec.ResultKey).Array()
}

// Collect drains the remaining pages and returns all extracted results.
func (p *Pager) Collect(ctx context.Context) ([]gjson.Result, error) {
	var all []gjson.Result
	for p.HasMorePages() {
		body, err := p.NextPage(ctx)
		if err != nil {
			return all, err
		}
		all = append(all, p.Results(body)...)
	}
	return all, nil
}
