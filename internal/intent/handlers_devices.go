package intent

import (
	"context"
	"fmt"
	"strings"
)

// RegisterDeviceHandlers registers the smart-plug power handlers.
func RegisterDeviceHandlers(r *Router) {
	r.Register("device.on", handleDeviceOn)
	r.Register("device.off", handleDeviceOff)
	r.Register("device.status", handleDeviceStatus)
}

func handleDeviceOn(ctx context.Context, in Intent, hctx *Context) error {
	return switchDevices(ctx, in, hctx, true)
}

func handleDeviceOff(ctx context.Context, in Intent, hctx *Context) error {
	return switchDevices(ctx, in, hctx, false)
}

// switchDevices powers one or more named devices on or off and speaks
// a summary. Missing devices are an expected outcome, not an error.
func switchDevices(ctx context.Context, in Intent, hctx *Context, on bool) error {
	devices := deviceParams(in.Params)
	if len(devices) == 0 {
		hctx.Say(ctx, "Which device?")
		return nil
	}
	if hctx.Plugs == nil {
		hctx.Say(ctx, "Smart plugs are not configured.")
		return nil
	}

	var succeeded, failed []string
	for _, raw := range devices {
		id := NormalizeDeviceID(raw)
		ok := false
		if on {
			ok = hctx.Plugs.TurnOn(ctx, id)
		} else {
			ok = hctx.Plugs.TurnOff(ctx, id)
		}
		if ok {
			succeeded = append(succeeded, spokenName(id))
		} else {
			failed = append(failed, spokenName(id))
		}
	}

	verb := "on"
	if !on {
		verb = "off"
	}

	switch {
	case len(succeeded) > 0 && len(failed) == 0:
		hctx.Say(ctx, fmt.Sprintf("%s %s.", strings.Join(succeeded, ", "), verb))
	case len(failed) > 0:
		hctx.Say(ctx, fmt.Sprintf("Couldn't find %s.", strings.Join(failed, ", ")))
	default:
		hctx.Say(ctx, "Couldn't find those devices.")
	}
	return nil
}

func handleDeviceStatus(ctx context.Context, in Intent, hctx *Context) error {
	id := NormalizeDeviceID(stringParam(in.Params, "device"))
	if id == "" {
		hctx.Say(ctx, "Which device?")
		return nil
	}
	if hctx.Plugs == nil {
		hctx.Say(ctx, "Smart plugs are not configured.")
		return nil
	}

	on, known := hctx.Plugs.IsOn(id)
	switch {
	case !known:
		hctx.Say(ctx, fmt.Sprintf("Couldn't find %s.", spokenName(id)))
	case on:
		hctx.Say(ctx, fmt.Sprintf("%s is on.", spokenName(id)))
	default:
		hctx.Say(ctx, fmt.Sprintf("%s is off.", spokenName(id)))
	}
	return nil
}

// deviceParams collects device names from either the "devices" list or
// the single "device" parameter.
func deviceParams(params map[string]any) []string {
	if params == nil {
		return nil
	}

	var devices []string
	if list, ok := params["devices"].([]any); ok {
		for _, v := range list {
			if s, ok := v.(string); ok && s != "" {
				devices = append(devices, s)
			}
		}
	}
	if list, ok := params["devices"].([]string); ok {
		devices = append(devices, list...)
	}
	if len(devices) == 0 {
		if s, ok := params["device"].(string); ok && s != "" {
			devices = append(devices, s)
		}
	}
	return devices
}

// NormalizeDeviceID converts a spoken device name into its canonical
// identifier: lowercase, hyphens stripped, spaces as underscores
// ("Record-Player" → "record_player").
func NormalizeDeviceID(name string) string {
	id := strings.ToLower(strings.TrimSpace(name))
	id = strings.ReplaceAll(id, "-", "")
	id = strings.ReplaceAll(id, " ", "_")
	return id
}

// spokenName converts a device identifier back into a speakable form.
func spokenName(id string) string {
	return strings.ReplaceAll(id, "_", " ")
}
