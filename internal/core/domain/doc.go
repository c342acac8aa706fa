// Package domain contains the core business entities for VeriDoc:
// documents, segments, answers and the error taxonomy shared across the
// ingestion and query pipelines. It has no dependencies on adapters.
package domain
