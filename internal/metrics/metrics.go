// Copyright 2025 KrakLabs
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.
//
// For commercial licensing, contact: licensing@kraklabs.com
//
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package metrics holds the process-wide Prometheus collectors for ingest,
// search, and graph algorithm operations, registered once behind a
// sync.Once the same way the teacher's pkg/ingestion.metricsIngestion does.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

type collectors struct {
	once sync.Once

	// Ingest
	filesAdded     prometheus.Counter
	filesModified  prometheus.Counter
	filesRemoved   prometheus.Counter
	nodesUpserted  prometheus.Counter
	nodesRemoved   prometheus.Counter
	embedComputed  prometheus.Counter
	embedCacheHits prometheus.Counter
	embedErrors    prometheus.Counter
	batchesApplied prometheus.Counter

	ingestDuration prometheus.Histogram
	parseDuration  prometheus.Histogram
	embedDuration  prometheus.Histogram

	// Search
	searchRequests   *prometheus.CounterVec
	searchDuration   *prometheus.HistogramVec
	searchResultSize prometheus.Histogram

	// Graph algorithms
	algoRequests *prometheus.CounterVec
	algoDuration *prometheus.HistogramVec

	// Watcher
	watchEvents   *prometheus.CounterVec
	watchDebounce prometheus.Histogram
}

var m collectors

func (c *collectors) init() {
	c.once.Do(func() {
		c.filesAdded = prometheus.NewCounter(prometheus.CounterOpts{Name: "cie_ingest_files_added_total", Help: "Files newly tracked by an ingest pass"})
		c.filesModified = prometheus.NewCounter(prometheus.CounterOpts{Name: "cie_ingest_files_modified_total", Help: "Files re-analyzed because their content hash changed"})
		c.filesRemoved = prometheus.NewCounter(prometheus.CounterOpts{Name: "cie_ingest_files_removed_total", Help: "Files no longer present on disk"})
		c.nodesUpserted = prometheus.NewCounter(prometheus.CounterOpts{Name: "cie_ingest_nodes_upserted_total", Help: "Module/function nodes created or updated"})
		c.nodesRemoved = prometheus.NewCounter(prometheus.CounterOpts{Name: "cie_ingest_nodes_removed_total", Help: "Nodes removed by a file's cascade delete"})
		c.embedComputed = prometheus.NewCounter(prometheus.CounterOpts{Name: "cie_ingest_embeddings_computed_total", Help: "Embeddings computed against the model"})
		c.embedCacheHits = prometheus.NewCounter(prometheus.CounterOpts{Name: "cie_ingest_embeddings_cache_hits_total", Help: "Embeddings reused from the on-disk cache"})
		c.embedErrors = prometheus.NewCounter(prometheus.CounterOpts{Name: "cie_ingest_embeddings_errors_total", Help: "Embedding model call failures"})
		c.batchesApplied = prometheus.NewCounter(prometheus.CounterOpts{Name: "cie_ingest_batches_applied_total", Help: "Batches atomically applied to the graph store"})

		buckets := []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10}
		c.ingestDuration = prometheus.NewHistogram(prometheus.HistogramOpts{Name: "cie_ingest_duration_seconds", Help: "Wall time of one ingest pass", Buckets: buckets})
		c.parseDuration = prometheus.NewHistogram(prometheus.HistogramOpts{Name: "cie_ingest_parse_duration_seconds", Help: "Wall time spent in language analyzers", Buckets: buckets})
		c.embedDuration = prometheus.NewHistogram(prometheus.HistogramOpts{Name: "cie_ingest_embed_duration_seconds", Help: "Wall time spent computing embeddings", Buckets: buckets})

		c.searchRequests = prometheus.NewCounterVec(prometheus.CounterOpts{Name: "cie_search_requests_total", Help: "Search requests by mode"}, []string{"mode"})
		c.searchDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{Name: "cie_search_duration_seconds", Help: "Search latency by mode", Buckets: buckets}, []string{"mode"})
		c.searchResultSize = prometheus.NewHistogram(prometheus.HistogramOpts{Name: "cie_search_result_count", Help: "Number of results returned per search", Buckets: []float64{0, 1, 2, 5, 10, 20, 50}})

		c.algoRequests = prometheus.NewCounterVec(prometheus.CounterOpts{Name: "cie_algorithm_requests_total", Help: "Graph algorithm invocations by algorithm name"}, []string{"algorithm"})
		c.algoDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{Name: "cie_algorithm_duration_seconds", Help: "Graph algorithm latency by algorithm name", Buckets: buckets}, []string{"algorithm"})

		c.watchEvents = prometheus.NewCounterVec(prometheus.CounterOpts{Name: "cie_watch_events_total", Help: "Filesystem events observed by op"}, []string{"op"})
		c.watchDebounce = prometheus.NewHistogram(prometheus.HistogramOpts{Name: "cie_watch_debounce_seconds", Help: "Time a path spent debouncing before ingest", Buckets: buckets})

		prometheus.MustRegister(
			c.filesAdded, c.filesModified, c.filesRemoved,
			c.nodesUpserted, c.nodesRemoved,
			c.embedComputed, c.embedCacheHits, c.embedErrors,
			c.batchesApplied,
			c.ingestDuration, c.parseDuration, c.embedDuration,
			c.searchRequests, c.searchDuration, c.searchResultSize,
			c.algoRequests, c.algoDuration,
			c.watchEvents, c.watchDebounce,
		)
	})
}

// IngestFileAdded records a newly-tracked file.
func IngestFileAdded() { m.init(); m.filesAdded.Inc() }

// IngestFileModified records a re-analyzed file.
func IngestFileModified() { m.init(); m.filesModified.Inc() }

// IngestFileRemoved records a file no longer present on disk.
func IngestFileRemoved() { m.init(); m.filesRemoved.Inc() }

// NodesUpserted adds n to the upserted-node counter.
func NodesUpserted(n int) {
	m.init()
	m.nodesUpserted.Add(float64(n))
}

// NodesRemoved adds n to the removed-node counter.
func NodesRemoved(n int) {
	m.init()
	m.nodesRemoved.Add(float64(n))
}

// EmbedComputed records an embedding computed against the model.
func EmbedComputed() { m.init(); m.embedComputed.Inc() }

// EmbedCacheHit records an embedding reused from cache.
func EmbedCacheHit() { m.init(); m.embedCacheHits.Inc() }

// EmbedError records an embedding model failure.
func EmbedError() { m.init(); m.embedErrors.Inc() }

// BatchApplied records one atomically-applied ingest batch.
func BatchApplied() { m.init(); m.batchesApplied.Inc() }

// ObserveIngestDuration records the wall time of one ingest pass.
func ObserveIngestDuration(seconds float64) { m.init(); m.ingestDuration.Observe(seconds) }

// ObserveParseDuration records time spent in language analyzers.
func ObserveParseDuration(seconds float64) { m.init(); m.parseDuration.Observe(seconds) }

// ObserveEmbedDuration records time spent computing embeddings.
func ObserveEmbedDuration(seconds float64) { m.init(); m.embedDuration.Observe(seconds) }

// SearchRequest records one search request for the given mode
// ("semantic", "hybrid", "lexical", "graph").
func SearchRequest(mode string) { m.init(); m.searchRequests.WithLabelValues(mode).Inc() }

// ObserveSearchDuration records search latency for the given mode.
func ObserveSearchDuration(mode string, seconds float64) {
	m.init()
	m.searchDuration.WithLabelValues(mode).Observe(seconds)
}

// ObserveSearchResultCount records how many results one search returned.
func ObserveSearchResultCount(n int) { m.init(); m.searchResultSize.Observe(float64(n)) }

// AlgorithmRequest records one invocation of the named graph algorithm.
func AlgorithmRequest(name string) { m.init(); m.algoRequests.WithLabelValues(name).Inc() }

// ObserveAlgorithmDuration records latency for the named graph algorithm.
func ObserveAlgorithmDuration(name string, seconds float64) {
	m.init()
	m.algoDuration.WithLabelValues(name).Observe(seconds)
}

// WatchEvent records one filesystem event of the given op
// ("create", "write", "remove", "rename", "chmod").
func WatchEvent(op string) { m.init(); m.watchEvents.WithLabelValues(op).Inc() }

// ObserveWatchDebounce records how long a path sat in the debounce window.
func ObserveWatchDebounce(seconds float64) { m.init(); m.watchDebounce.Observe(seconds) }
