package returnstatusnotify

// Aggregate folds channel outcomes into the response. Each outcome only
// touches its own channel; missing channels stay false/empty.
func Aggregate(outcomes ...ChannelOutcome) Output {
	var out Output
	for _, o := range outcomes {
		switch o.Channel {
		case ChannelStaffEmail:
			out.NotificationEmployeeByEmail = out.NotificationEmployeeByEmail || o.Sent
		case ChannelClientEmail:
			out.NotificationClientByEmail = out.NotificationClientByEmail || o.Sent
		case ChannelClientSMS:
			out.NotificationClientBySms.IsSent = out.NotificationClientBySms.IsSent || o.Sent
			if o.Message != "" {
				out.NotificationClientBySms.Message = o.Message
			}
		}
	}
	return out
}
