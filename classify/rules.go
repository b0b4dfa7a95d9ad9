package classify

import "github.com/ftahirops/xtimeline/model"

const (
	timelineContainerLifecycle = "container-lifecycle"
	timelineContainerReadiness = "container-readiness"
)

var (
	colorRed       = model.MustHex("#d0312d")
	colorOrange    = model.MustHex("#ffa500")
	colorYellow    = model.MustHex("#fada5e")
	colorGreen     = model.MustHex("#3cb043")
	colorLightBlue = model.MustHex("#96cbff")
	colorBlue      = model.MustHex("#1e7bd9")
)

func rule(name string, cat model.Category, color model.Color, m Matcher) Rule {
	return Rule{
		Classification: model.Classification{Name: name, Category: cat, Color: color},
		Matcher:        m,
	}
}

func onTimeline(r Rule, differentiator string) Rule {
	r.Classification.TimelineDifferentiator = differentiator
	return r
}

func src(s ...string) []string { return s }

func podState(reason string) Matcher {
	return Matcher{Source: src("PodState"), Reason: src(reason)}
}

func containerState(reason string) Matcher {
	return Matcher{Source: src("PodState"), LocatorKeysExist: src("container"), Reason: src(reason)}
}

// Unknown classifies anything no other rule claims.
var Unknown = rule("Unknown", model.CategoryUnclassified, model.Gray, Matcher{})

// DefaultRules returns the built-in rule table in evaluation order. The
// last rule is the Unknown catch-all.
func DefaultRules() []Rule {
	return []Rule{
		// KubeEvent
		rule("PathologicalKnown", model.CategoryKubeEvent, model.MustHex("#0000ff"), Matcher{
			Source:           src("KubeEvent"),
			AnnotationsMatch: map[string]string{"interesting": "true", "pathological": "true"},
		}),
		rule("InterestingEvent", model.CategoryKubeEvent, model.MustHex("#6e6e6e"), Matcher{
			Source:           src("KubeEvent"),
			AnnotationsMatch: map[string]string{"interesting": "true"},
		}),
		rule("PathologicalNew", model.CategoryKubeEvent, colorRed, Matcher{
			Source:           src("KubeEvent"),
			AnnotationsMatch: map[string]string{"pathological": "true"},
		}),

		// Alert
		rule("AlertPending", model.CategoryAlert, colorYellow, Matcher{
			Source:           src("Alert"),
			AnnotationsMatch: map[string]string{"pending": "true"},
		}),
		rule("AlertInfo", model.CategoryAlert, colorYellow, Matcher{
			Source:           src("Alert"),
			AnnotationsMatch: map[string]string{"severity": "info"},
		}),
		rule("AlertWarning", model.CategoryAlert, colorOrange, Matcher{
			Source:           src("Alert"),
			AnnotationsMatch: map[string]string{"severity": "warning"},
		}),
		rule("AlertCritical", model.CategoryAlert, colorRed, Matcher{
			Source:           src("Alert"),
			AnnotationsMatch: map[string]string{"severity": "critical"},
		}),

		// OperatorState
		rule("OperatorUnavailable", model.CategoryOperatorState, colorRed, Matcher{
			Source:           src("OperatorState"),
			AnnotationsMatch: map[string]string{"condition": "Available", "status": "false"},
		}),
		rule("OperatorDegraded", model.CategoryOperatorState, colorOrange, Matcher{
			Source:           src("OperatorState"),
			AnnotationsMatch: map[string]string{"condition": "Degraded", "status": "true"},
		}),
		rule("OperatorProgressing", model.CategoryOperatorState, colorYellow, Matcher{
			Source:           src("OperatorState"),
			AnnotationsMatch: map[string]string{"condition": "Progressing", "status": "true"},
		}),

		// NodeState
		rule("NodeDrain", model.CategoryNodeState, model.MustHex("#4294e6"), Matcher{
			LocatorType:      src("Node"),
			AnnotationsMatch: map[string]string{"phase": "Drain"},
		}),
		rule("NodeReboot", model.CategoryNodeState, model.MustHex("#6aaef2"), Matcher{
			LocatorType:      src("Node"),
			AnnotationsMatch: map[string]string{"phase": "Reboot"},
		}),
		rule("NodeOperatingSystemUpdate", model.CategoryNodeState, colorLightBlue, Matcher{
			LocatorType:      src("Node"),
			AnnotationsMatch: map[string]string{"phase": "OperatingSystemUpdate"},
		}),
		rule("NodeUpdate", model.CategoryNodeState, colorBlue, Matcher{
			LocatorType:      src("Node"),
			AnnotationsMatch: map[string]string{"reason": "NodeUpdate"},
		}),
		rule("NodeNotReady", model.CategoryNodeState, colorYellow, Matcher{
			LocatorType:      src("Node"),
			AnnotationsMatch: map[string]string{"reason": "NotReady"},
		}),

		// E2ETest
		rule("TestPassed", model.CategoryE2ETest, colorGreen, Matcher{
			Source:           src("E2ETest"),
			AnnotationsMatch: map[string]string{"status": "Passed"},
		}),
		rule("TestSkipped", model.CategoryE2ETest, model.MustHex("#ceba76"), Matcher{
			Source:           src("E2ETest"),
			AnnotationsMatch: map[string]string{"status": "Skipped"},
		}),
		rule("TestFlaked", model.CategoryE2ETest, colorOrange, Matcher{
			Source:           src("E2ETest"),
			AnnotationsMatch: map[string]string{"status": "Flaked"},
		}),
		rule("TestFailed", model.CategoryE2ETest, colorRed, Matcher{
			Source:           src("E2ETest"),
			AnnotationsMatch: map[string]string{"status": "Failed"},
		}),

		// Pod
		rule("PodCreated", model.CategoryPod, colorLightBlue, podState("Created")),
		rule("PodScheduled", model.CategoryPod, colorBlue, podState("Scheduled")),
		rule("PodTerminating", model.CategoryPod, colorOrange, podState("GracefulDelete")),
		onTimeline(rule("ContainerWait", model.CategoryPod, model.MustHex("#ca8dfd"),
			containerState("ContainerWait")), timelineContainerLifecycle),
		onTimeline(rule("ContainerStart", model.CategoryPod, model.MustHex("#9300ff"),
			containerState("ContainerStart")), timelineContainerLifecycle),
		onTimeline(rule("ContainerNotReady", model.CategoryPod, colorYellow,
			containerState("NotReady")), timelineContainerReadiness),
		onTimeline(rule("ContainerReady", model.CategoryPod, colorGreen,
			containerState("Ready")), timelineContainerReadiness),
		onTimeline(rule("ContainerReadinessFailed", model.CategoryPod, colorRed,
			containerState("ReadinessFailed")), timelineContainerReadiness),
		onTimeline(rule("ContainerReadinessErrored", model.CategoryPod, colorRed,
			containerState("ReadinessErrored")), timelineContainerReadiness),
		onTimeline(rule("StartupProbeFailed", model.CategoryPod, model.MustHex("#c90076"),
			podState("StartupProbeFailed")), timelineContainerReadiness),
		rule("PodStateOther", model.CategoryPod, model.Gray, Matcher{Source: src("PodState")}),

		// Disruption
		rule("CIClusterDisruption", model.CategoryDisruption, colorLightBlue, Matcher{
			Source:          src("Disruption"),
			MessageContains: "likely a problem in cluster running tests",
		}),
		rule("Disruption", model.CategoryDisruption, colorRed, Matcher{Source: src("Disruption")}),

		// ClusterState
		rule("Degraded", model.CategoryClusterState, model.MustHex("#b65049"), Matcher{
			Source:           src("ClusterState"),
			AnnotationsMatch: map[string]string{"condition": "Degraded"},
		}),
		rule("Upgradeable", model.CategoryClusterState, model.MustHex("#32b8b6"), Matcher{
			Source:           src("ClusterState"),
			AnnotationsMatch: map[string]string{"condition": "Upgradeable"},
		}),
		rule("StatusFalse", model.CategoryClusterState, model.MustHex("#ffffff"), Matcher{
			Source:           src("ClusterState"),
			AnnotationsMatch: map[string]string{"status": "false"},
		}),
		rule("StatusUnknown", model.CategoryClusterState, model.MustHex("#bbbbbb"), Matcher{
			Source:           src("ClusterState"),
			AnnotationsMatch: map[string]string{"status": "Unknown"},
		}),

		// PodLog
		rule("PodLogWarning", model.CategoryPodLog, colorYellow, Matcher{
			Source:           src("PodLog", "EtcdLog"),
			AnnotationsMatch: map[string]string{"severity": "warning"},
		}),
		rule("PodLogError", model.CategoryPodLog, colorRed, Matcher{
			Source:           src("PodLog", "EtcdLog"),
			AnnotationsMatch: map[string]string{"severity": "error"},
		}),
		rule("PodLogInfo", model.CategoryPodLog, colorLightBlue, Matcher{
			Source:           src("PodLog", "EtcdLog"),
			AnnotationsMatch: map[string]string{"severity": "info"},
		}),
		rule("PodLogOther", model.CategoryPodLog, colorLightBlue, Matcher{Source: src("PodLog", "EtcdLog")}),

		// KubeletLog
		rule("KubeletLog", model.CategoryKubeletLog, model.MustHex("#6aaef2"), Matcher{Source: src("KubeletLog")}),

		Unknown,
	}
}
