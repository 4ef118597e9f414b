package checkpointer

// nEpisode implements checkpointing every N episodes
type nEpisode struct {
	interval int
	object   Serializable // Object to save

	// filename returns the name of the file to save the object in.
	// Use FilenameEnumerator to keep every checkpoint in its own
	// numbered file, or FileTimer to overwrite a single checkpoint
	// named after the start of the run.
	filename func() string
}

// NewNEpisode returns a Checkpointer that checkpoints object after
// every n episodes. If n < 1, the returned Checkpointer never saves.
func NewNEpisode(n int, object Serializable,
	filename func() string) Checkpointer {
	return &nEpisode{
		interval: n,
		object:   object,
		filename: filename,
	}
}

// Checkpoint saves the tracked object if episode is a positive
// multiple of the checkpointing interval
func (n *nEpisode) Checkpoint(episode int) error {
	if n.interval < 1 || episode < 1 || episode%n.interval != 0 {
		return nil
	}
	return Save(n.filename(), n.object)
}
