// SPDX-License-Identifier: GPL-3.0-or-later

// Package kubetables defines the Kubernetes tables served over a Prometheus
// backend fed by kube-state-metrics and cAdvisor: alerts, daemonsets and the
// per namespace resource breakdown.
package kubetables
