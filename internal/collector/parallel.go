package collector

import (
	"log"
	"net/http"
	"time"

	"paperdash/internal/config"
	"paperdash/internal/model"
)

// FetchPage fills a page's four asset slots from a per-symbol chart
// source. Symbols are fetched in batches of at most maxConcurrent
// concurrent tasks; within a batch, launch order follows the symbol list
// and the orchestrator waits up to taskTimeout per completion signal. A
// task that overruns the wait keeps running and is simply not waited on
// further; it owns its slot exclusively, so its late write races nothing.
// The next batch does not launch until the current batch's wait resolves.
// Page validity is true iff at least one symbol succeeded.
func FetchPage(f ChartFetcher, specs []config.AssetSpec, page *model.PageData,
	maxConcurrent int, taskTimeout time.Duration) {

	page.Valid = false
	count := len(specs)
	if count > model.AssetsPerPage {
		count = model.AssetsPerPage
	}

	if maxConcurrent <= 1 {
		fetchPageSequential(f, specs[:count], page)
		return
	}

	// Buffered to the full task count so a late signal from a timed-out
	// task never blocks, matching counting-semaphore semantics: a stale
	// signal can satisfy a later batch's wait, carrying its result along.
	done := make(chan int, count)
	results := make([]bool, count)

	launched := 0
	for launched < count {
		batch := maxConcurrent
		if remaining := count - launched; remaining < batch {
			batch = remaining
		}

		for i := 0; i < batch; i++ {
			idx := launched + i
			go func(idx int) {
				asset := &page.Assets[idx]
				*asset = model.AssetRecord{
					Symbol:        specs[idx].Symbol,
					DisplaySymbol: specs[idx].Display,
					Name:          specs[idx].Name,
				}
				results[idx] = f.FetchAsset(specs[idx].Symbol, asset) == http.StatusOK
				done <- idx
			}(idx)
		}

		for i := 0; i < batch; i++ {
			select {
			case idx := <-done:
				if results[idx] {
					page.Valid = true
				}
			case <-time.After(taskTimeout):
				log.Printf("[WARN] %s: task wait timed out after %s", f.Name(), taskTimeout)
			}
		}
		launched += batch
	}

	page.LastUpdated = time.Now().Unix()
}

// fetchPageSequential is the strictly sequential path used when the
// concurrency cap is one. Final records and validity aggregation are
// identical to the fan-out path; only latency differs.
func fetchPageSequential(f ChartFetcher, specs []config.AssetSpec, page *model.PageData) {
	for i := range specs {
		asset := &page.Assets[i]
		*asset = model.AssetRecord{
			Symbol:        specs[i].Symbol,
			DisplaySymbol: specs[i].Display,
			Name:          specs[i].Name,
		}
		if f.FetchAsset(specs[i].Symbol, asset) == http.StatusOK {
			page.Valid = true
		}
	}
	page.LastUpdated = time.Now().Unix()
}
