// Package recovery estimates the anomalous support of a multi-time-step
// signal from its Gaussian measurements.
//
// Three strategies implement [Recoverer]:
//
//   - [OSGA] ranks candidates by their mean squared correlation with the
//     measurements across time steps.
//   - [Lasso] stacks all time steps into one L1-penalised regression and
//     ranks candidates by their signed coefficient.
//   - [SOMP] runs K rounds of simultaneous orthogonal matching pursuit.
//
// Every strategy returns exactly K distinct indices. Strategies are looked
// up by name through [Lookup]; [RunTrial] wires signal generation,
// measurement and recovery into one Monte-Carlo trial.
package recovery
