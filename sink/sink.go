// Package sink provides AnalyticsSink implementations.
package sink

import "github.com/ZaguanLabs/gatito"

// AnalyticsSink is an alias to the main package interface.
type AnalyticsSink = gatito.AnalyticsSink

// Event is an alias to the main package type.
type Event = gatito.Event
