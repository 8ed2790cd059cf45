// Package transcript carries call transcripts from the telephony server to the code
// waiting on a call.
//
// The telephony server publishes a transcript on the channel named by the conversation id
// once the call completes. A Channel subscribes to one conversation and is drained with
// Poll, which never blocks, so the waiting side decides its own pacing:
//
//	ch, err := transcript.Dial(ctx, cfg.Broker)
//	if err != nil {
//	    return err // *types.ChannelUnavailableError
//	}
//	defer ch.Close()
//
//	if err := ch.Subscribe(ctx, id); err != nil {
//	    return err
//	}
//	defer ch.Unsubscribe(ctx, id)
//	msg, ok, err := ch.Poll(ctx)
//
// Three brokers are supported: Redis pub/sub (channel name is the bare conversation id),
// NATS (subject transcripts.<id>) and an in-process hub.
//
// Completed transcripts may also be persisted in a Store. Deleting from a Store is
// idempotent.
package transcript
