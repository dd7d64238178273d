// Package decision implements weighted-criteria decision sessions.
//
// A session collects criteria, options, and per-option evaluations,
// then derives analysis from the snapshot: ranking by weighted score,
// a confidence estimate from score dispersion and top-gap separation,
// rule-based logic/bias/risk checks, and a terminal recommendation.
// Analysis never mutates the session; only evaluate and recommend do.
package decision
