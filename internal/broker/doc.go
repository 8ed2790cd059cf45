// Package broker is an in-process topic hub used as the local transcript channel backend.
//
// A Hub holds named topics. Each topic fans published values out to its subscriptions,
// each of which owns a bounded buffer. A subscriber that cannot accept a value within the
// slow-subscriber timeout is dropped rather than stalling the publisher.
//
//	hub := broker.NewHub[string]()
//	sub := hub.Topic("conversation-1").Subscribe(ctx)
//	defer sub.Unsubscribe()
//
//	_ = hub.Topic("conversation-1").Publish(ctx, "hello")
//	select {
//	case v := <-sub.C():
//	    fmt.Println(v)
//	default:
//	}
//
// Topics without subscribers are removed when their last subscription is released.
package broker
