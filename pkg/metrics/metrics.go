// Copyright 2025 The actor-go Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// package metrics provides Prometheus metrics for the runtime.
package metrics

import (
	"log"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// SupervisorRestartsTotal counts restarts per supervised child.
	SupervisorRestartsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "actor_go_supervisor_restarts_total",
		Help: "The total number of times a supervised child has been restarted.",
	},
		[]string{"child_id"},
	)

	// ChildFailuresTotal counts failures per supervised child.
	ChildFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "actor_go_child_failures_total",
		Help: "The total number of failures observed for a supervised child.",
	},
		[]string{"child_id"},
	)

	// ActorsSpawnedTotal counts actors spawned by the system.
	ActorsSpawnedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "actor_go_actors_spawned_total",
		Help: "The total number of actors spawned.",
	})

	// MailboxDroppedTotal counts messages dropped by mailboxes, whether
	// from backpressure or TTL expiry.
	MailboxDroppedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "actor_go_mailbox_dropped_total",
		Help: "The total number of messages dropped by mailboxes.",
	})

	// BrokerPublishedTotal counts messages published through the broker.
	BrokerPublishedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "actor_go_broker_published_total",
		Help: "The total number of messages published to the broker.",
	})

	// BrokerDeliveredTotal counts deliveries to subscriber streams.
	BrokerDeliveredTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "actor_go_broker_delivered_total",
		Help: "The total number of messages delivered to subscribers.",
	})

	// BrokerDroppedTotal counts deliveries dropped because a subscriber
	// stream was full.
	BrokerDroppedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "actor_go_broker_dropped_total",
		Help: "The total number of deliveries dropped by the broker.",
	})
)

// Serve starts an HTTP server to expose the Prometheus metrics.
func Serve(addr string) {
	http.Handle("/metrics", promhttp.Handler())
	log.Printf("Metrics server listening on %s", addr)
	if err := http.ListenAndServe(addr, nil); err != nil {
		logFatalf("Metrics server failed: %v", err)
	}
}

// logFatalf can be replaced by tests to prevent process exit.
var logFatalf = log.Fatalf
