// Package services holds cross-cutting helpers shared by pipeline stages:
// the sentinel error taxonomy used to classify failures and the context
// annotations (run id, stage, clip index) that structured logging reads back.
package services
