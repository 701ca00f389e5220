/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package storage implements design persistence.
// It handles create/open/save for design files ({"components": [...]}) with transactional writes and timestamped backups in .backups/.
// It also manages the per-design SQLite workspace at <dir>/.fdwork/<name>.sqlite that carries the undo/redo log between sessions.
// The workspace is disposable: deleting it only loses history.
package storage
