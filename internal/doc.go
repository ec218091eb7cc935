// Package analytics implements a device usage analytics and scene
// recommendation service for smart-home installations.
//
// # Architecture
//
// The service is structured into several key packages:
//   - analytics: session reconstruction and statistical aggregation
//   - forecast: daily consumption prediction
//   - scenes: co-occurrence mining and scene recommendations
//   - database: PostgreSQL-backed device directory and event logs
//   - server: HTTP JSON API
//   - ingest: Kafka consumer for device state-change batches
//   - service: orchestration between repositories and the core
//   - scheduler: periodic analytics metrics refresh
//   - models: shared data structures
//
// Key Features
//
//   - Session Reconstruction:
//     Raw online/offline events are paired into runtime sessions with a
//     forward greedy matcher; a strict state-machine mode is available.
//
//   - Usage Analytics:
//     Per-device runtime and consumption statistics, high-consumption
//     flagging, hourly usage patterns and maintenance risk scoring.
//
//   - Forecasting:
//     A 30-day consumption outlook from a linear trend over the recent
//     daily series, with flat-average fallbacks for thin histories.
//
//   - Scene Mining:
//     Recurring co-occurrence patterns in operate events become
//     sequential and one-tap automation scene candidates.
//
// Example Usage
//
//	svc := service.New(repo, repo, repo, analytics.PairGreedy, logger)
//	report, err := svc.UsageReport(ctx, ownerID)
//
// For more information about specific packages, see their respective
// documentation.
package homeflux
