// Package processor injects JSON-LD and tracker scripts into HTML pages.
package processor

import "github.com/ZaguanLabs/gatito"

// PageProcessor is an alias to the main package interface.
type PageProcessor = gatito.PageProcessor

// Marker is the attribute set on every element this package injects.
// Its value names the kind of block: "schema" or "tracker".
const Marker = "data-gatito"

// OrderLinkAttr marks anchors whose href is replaced with the order link.
const OrderLinkAttr = "data-gatito-order"

// JSONLDType is the script type of structured data blocks.
const JSONLDType = "application/ld+json"
