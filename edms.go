// Package edms is the setup and administration service of the Insight
// document management system
package edms

const (
	// Name identifies the service in logs and health responses
	Name = "insight-edms"

	// Version is the service release version
	Version = "0.13.0"
)

// License is the license the service is distributed under
const License = `Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.`
