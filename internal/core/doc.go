// Package core holds the invitation campaign domain: the recipient CSV
// format, template rendering, analytics, and the in-memory Service that
// ties them together.
//
// It has no knowledge of HTTP. The web package and tests drive it through
// [Service].
//
// # Recipient CSV
//
// [Decode] and [Encode] implement a minimal comma-separated dialect with no
// quoting. A header row must name every column in [RequiredHeaders]; rows
// whose field count differs from the header, or that leave a required field
// empty, are skipped and reported through [DecodeReport]. Decoded recipients
// start out [StatusPending] unless the file carries a valid status column.
//
// # Templates
//
// [Render] substitutes {name}, {email}, {organization}, {role},
// {achievement}, {personalized_hook}, {rsvp_link} and {unsubscribe_link}.
// Unknown tokens are left untouched.
//
// # Campaigns
//
// Every successful upload becomes a [Campaign] owned by the [Service]. The
// service renders previews, records status changes, computes [Stats] and,
// when a mail backend is configured, sends the invitations. Campaigns that
// sit idle past the configured TTL are pruned by [Service.StartPruneScheduler].
//
// # Errors
//
// Service errors wrap the sentinels in errors.go. [MapError] converts them
// to a [UserMessage] with a support code for display.
package core
