package storage

// ProjectStats summarizes the stored upgrades of one project.
type ProjectStats struct {
	Project      string
	UpgradeCount int
	LatestAt     string
}
