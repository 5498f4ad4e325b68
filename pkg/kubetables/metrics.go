// SPDX-License-Identifier: GPL-3.0-or-later

package kubetables

// Metric names.
const (
	metricAlerts         = "ALERTS"
	metricAlertsForState = "ALERTS_FOR_STATE"

	metricDaemonSetCreated          = "kube_daemonset_created"
	metricDaemonSetDesiredScheduled = "kube_daemonset_status_desired_number_scheduled"
	metricDaemonSetNumberReady      = "kube_daemonset_status_number_ready"

	metricNamespaceStatusPhase   = "kube_namespace_status_phase"
	metricPodContainerRequests   = "kube_pod_container_resource_requests"
	metricPodContainerLimits     = "kube_pod_container_resource_limits"
	metricContainerCPUUsage      = "container_cpu_usage_seconds_total"
	metricContainerMemWorkingSet = "container_memory_working_set_bytes"
)

// Label names.
const (
	labelAlertName  = "alertname"
	labelAlertState = "alertstate"
	labelSeverity   = "severity"
	labelNamespace  = "namespace"
	labelDaemonSet  = "daemonset"
	labelPod        = "pod"
	labelContainer  = "container"
	labelResource   = "resource"
)
