// Package presence derives room occupancy from motion.
//
// Two components live here:
//
//   - Detector: consumes raw motion signals from MQTT sensor topics,
//     applies the configured debounce window, and publishes
//     "presence.motion_detected" events on the bus.
//   - Agent: consumes motion events and a periodic timer to drive the
//     EMPTY ⇄ OCCUPIED transitions through the state manager.
//
// # Agent rules
//
//  1. EMPTY + motion → OCCUPIED, one "presence.entry_detected" event,
//     last-motion time recorded.
//  2. OCCUPIED + motion → no transition, no entry event; the inactivity
//     timer restarts.
//  3. OCCUPIED + no motion for the occupancy timeout → EMPTY, one
//     "presence.exit_detected" and one "presence.room_empty_timeout".
//  4. Exit requests while EMPTY are a no-op.
//
// The timeout check runs on a ticker. The configured check interval is
// an upper bound: the effective cadence is capped at half the occupancy
// timeout so short timeouts are still detected promptly. TriggerExit
// bypasses the cadence entirely for verification.
//
// Both components own a cancellable lifecycle: Stop cancels the
// background work and waits for it to finish before returning.
package presence
