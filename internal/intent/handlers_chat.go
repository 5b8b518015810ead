package intent

import "context"

// RegisterChatHandlers registers the conversational response handler.
func RegisterChatHandlers(r *Router) {
	r.Register("chat.response", handleChatResponse)
}

// handleChatResponse speaks the message the language backend produced
// for a conversational query.
func handleChatResponse(ctx context.Context, in Intent, hctx *Context) error {
	message := stringParam(in.Params, "message")
	if message == "" {
		message = "Yes."
	}
	hctx.Say(ctx, message)
	return nil
}
