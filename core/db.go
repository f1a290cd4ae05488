package core

// DBOrdering renders an ORDER BY clause fragment. Field must be a trusted
// column name, never user input.
type DBOrdering struct {
	Field     string
	Ascending bool
}

func (ord DBOrdering) String() string {
	direction := "DESC"
	if ord.Ascending {
		direction = "ASC"
	}
	return ord.Field + " " + direction
}
