package core

import "github.com/mraspaud/kb-solaria/internal/transport"

// enqueueHydration schedules one `fetch_history` command per channel id
// in ids, spaced by the configured hydration interval (spec.md §6
// "enqueue hydration ... 200 ms-spaced", §9 Open Question 3: the spacing
// value is empirical, not a correctness property, so it only needs to be
// a monotonically increasing delay rather than a precise cadence).
//
// The outbound command name (`fetch_history`) is this port's own
// addition: spec.md's command vocabulary (§6) never names one for
// "fetch a channel's backlog", only `fetch_thread` for thread replies.
func (c *Core) enqueueHydration(ids []string) {
	if len(ids) == 0 {
		return
	}
	spacing := c.Config.Hydration.SpacingMillis
	if spacing <= 0 {
		spacing = 200
	}
	for i, channelID := range ids {
		ch, ok := c.Store.Channel(channelID)
		if !ok {
			continue
		}
		delay := msDuration(spacing * i)
		cmd := transport.Command{
			Type:      transport.CommandFetchHistory,
			ServiceID: ch.Service,
			ChannelID: channelID,
		}
		if delay <= 0 {
			c.send(cmd)
			continue
		}
		c.scheduler.AfterFunc(delay, func() {
			c.send(cmd)
		})
	}
}
