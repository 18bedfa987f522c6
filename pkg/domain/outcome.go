package domain

// Outcome は 1 回の操作の結果で、Success か Failure のどちらかです。
type Outcome interface {
	isOutcome()
}

type Success struct {
	Results ResultSet
}

type Failure struct {
	Message string
}

func (Success) isOutcome() {}
func (Failure) isOutcome() {}

// OutcomeOf は操作の戻り値を Outcome に変換します。
func OutcomeOf(results ResultSet, err error) Outcome {
	if err != nil {
		return Failure{Message: UserMessage(err)}
	}
	return Success{Results: results}
}
