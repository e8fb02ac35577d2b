/*

This is the type for staking pools, which carries all the state the engine
needs to admit deposits and drive the reward rate.

*/

package types

type PoolID uint64

// Pool is one staking configuration. APR is stored as an integer scaled by 100
// (1000 = 10.00%), matching the scale the reward arithmetic expects. APR moves
// on every join and exit by the engine-wide APR factor, so the value read at
// stake time is not necessarily the value used at reward time.
type Pool struct {
	ID           PoolID `json:"id"`
	APR          int64  `json:"apr"`            // scaled x100, 1000 = 10.00%
	PeriodInDays int64  `json:"period_in_days"` // lock duration, immutable after creation
	TotalStakers uint64 `json:"total_stakers"`  // count of deposits with Ended == false
	Enabled      bool   `json:"enabled"`        // gate for new stakes and reward-bearing exits
}
