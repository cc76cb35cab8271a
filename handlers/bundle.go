package handlers

// HandlerBundle groups the endpoint handlers the router mounts.
type HandlerBundle struct {
	Bills         *BillHandler
	Reminders     *ReminderHandler
	Dashboard     *DashboardHandler
	Users         *UserHandler
	Preferences   *PreferenceHandler
	Notifications *NotificationHandler
	Insights      *InsightHandler
	Admin         *AdminHandler
}
