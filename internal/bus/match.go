package bus

import "strings"

// topicSeparator delimits segments within an event type.
const topicSeparator = "."

// IsPattern reports whether a subscription string contains a wildcard.
func IsPattern(s string) bool {
	return strings.Contains(s, "*")
}

// Match reports whether a glob pattern matches a dot-namespaced topic.
//
// Matching is segment-aware on the "." delimiter:
//
//   - "*" alone matches every topic
//   - a "*" segment matches exactly one topic segment
//   - a trailing "*" segment matches one or more remaining segments
//   - any other segment must match literally
//
// Examples:
//
//	Match("presence.*", "presence.motion_detected")  // true
//	Match("presence.*", "voice.command")             // false
//	Match("*", "room.state_changed")                 // true
func Match(pattern, topic string) bool {
	if pattern == "*" {
		return true
	}
	if pattern == topic {
		return true
	}

	pSegs := strings.Split(pattern, topicSeparator)
	tSegs := strings.Split(topic, topicSeparator)

	for i, p := range pSegs {
		trailing := i == len(pSegs)-1
		if p == "*" {
			if trailing {
				// Trailing wildcard swallows the rest, but must
				// consume at least one segment.
				return len(tSegs) >= len(pSegs)
			}
			if i >= len(tSegs) {
				return false
			}
			continue
		}
		if i >= len(tSegs) || p != tSegs[i] {
			return false
		}
	}

	return len(pSegs) == len(tSegs)
}
