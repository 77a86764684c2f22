// Copyright 2024 Google, LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package model

// GetExampleAnalysis returns a well-formed analysis used as the few-shot
// example embedded in the analyzer prompt. Giving the model a complete JSON
// example significantly improves the reliability of its output structure.
func GetExampleAnalysis() *ReelAnalysis {
	return &ReelAnalysis{
		Transcript: "ഇവിടെയാണ് കേരളത്തിലെ ഏറ്റവും മനോഹരമായ വെള്ളച്ചാട്ടം",
		Location:   "Athirappilly Waterfalls",
		District:   "Thrissur",
		Summary:    "The creator stands in front of a large waterfall and calls it the most beautiful in Kerala; signage and the caption both point to Athirappilly.",
	}
}
